// Package audio inspects WAV input before it is handed to ffmpeg.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

const (
	formatPCM   = 1
	formatFloat = 3

	maxFmtChunk    = 1 << 16
	measureBufSize = 64 << 10
)

// Info describes a PCM or IEEE float WAV file and its signal level.
type Info struct {
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	Samples       int64
	Duration      time.Duration
	RMSdBFS       float64
	PeakdBFS      float64
}

// Silent reports whether the level stays below thresholdDBFS. The peak may
// exceed the threshold by 6 dB to tolerate clicks.
func (i Info) Silent(thresholdDBFS float64) bool {
	if i.Samples == 0 {
		return true
	}
	if math.IsInf(i.RMSdBFS, -1) && math.IsInf(i.PeakdBFS, -1) {
		return true
	}
	return i.RMSdBFS <= thresholdDBFS && i.PeakdBFS <= thresholdDBFS+6
}

type fmtChunk struct {
	format        uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// Inspect parses the RIFF header of path and measures its samples.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Info{}, ErrInvalidWAV
	}

	format, data, err := readChunks(f)
	if err != nil {
		return Info{}, err
	}
	if err := format.validate(); err != nil {
		return Info{}, err
	}
	if _, err := f.Seek(data.offset, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek wav data: %w", err)
	}

	info := Info{
		Format:        format.format,
		Channels:      format.channels,
		SampleRate:    format.sampleRate,
		BitsPerSample: format.bitsPerSample,
	}

	peak, sumSquares, samples, err := measure(io.LimitReader(f, data.size), format)
	if err != nil {
		return Info{}, fmt.Errorf("read wav data: %w", err)
	}
	info.Samples = samples
	if format.channels > 0 && format.sampleRate > 0 {
		frames := samples / int64(format.channels)
		info.Duration = time.Duration(frames) * time.Second / time.Duration(format.sampleRate)
	}

	if samples == 0 {
		info.RMSdBFS, info.PeakdBFS = math.Inf(-1), math.Inf(-1)
		return info, nil
	}
	info.RMSdBFS = toDBFS(math.Sqrt(sumSquares / float64(samples)))
	info.PeakdBFS = toDBFS(peak)
	return info, nil
}

// dataChunk locates the sample bytes. Streams written by recorders that never
// patched the header claim a size past EOF; readers stop at EOF.
type dataChunk struct {
	offset int64
	size   int64
}

func readChunks(r io.ReadSeeker) (fmtChunk, dataChunk, error) {
	var (
		format  fmtChunk
		data    dataChunk
		hasFmt  bool
		hasData bool
	)

	chunkHeader := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmtChunk{}, dataChunk{}, fmt.Errorf("read wav chunk header: %w", err)
		}

		id := string(chunkHeader[:4])
		size := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		padded := size + size%2

		switch id {
		case "fmt ":
			if size < 16 || size > maxFmtChunk {
				return fmtChunk{}, dataChunk{}, ErrInvalidWAV
			}
			buf := make([]byte, padded)
			if _, err := io.ReadFull(r, buf); err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && size%2 == 1) {
				return fmtChunk{}, dataChunk{}, fmt.Errorf("read wav fmt chunk: %w", err)
			}
			format = fmtChunk{
				format:        binary.LittleEndian.Uint16(buf[0:2]),
				channels:      binary.LittleEndian.Uint16(buf[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(buf[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(buf[14:16]),
			}
			hasFmt = true
			continue
		case "data":
			offset, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return fmtChunk{}, dataChunk{}, fmt.Errorf("locate wav data: %w", err)
			}
			data = dataChunk{offset: offset, size: size}
			hasData = true
		}

		if _, err := r.Seek(padded, io.SeekCurrent); err != nil {
			return fmtChunk{}, dataChunk{}, fmt.Errorf("skip wav chunk %q: %w", id, err)
		}
	}

	if !hasFmt || !hasData {
		return fmtChunk{}, dataChunk{}, ErrInvalidWAV
	}
	return format, data, nil
}

func (c fmtChunk) validate() error {
	switch c.format {
	case formatPCM:
		switch c.bitsPerSample {
		case 8, 16, 24, 32:
			return nil
		}
	case formatFloat:
		switch c.bitsPerSample {
		case 32, 64:
			return nil
		}
	}
	return fmt.Errorf("%w: format %d with %d bits per sample", ErrUnsupportedWAV, c.format, c.bitsPerSample)
}

// measure decodes samples from r until EOF. A trailing partial sample is
// ignored.
func measure(r io.Reader, c fmtChunk) (peak, sumSquares float64, samples int64, err error) {
	width := int(c.bitsPerSample / 8)
	buf := make([]byte, measureBufSize-measureBufSize%width)
	pending := 0

	for {
		n, readErr := r.Read(buf[pending:])
		n += pending

		whole := n - n%width
		for i := 0; i < whole; i += width {
			v := decode(buf[i:i+width], c)
			if a := math.Abs(v); a > peak {
				peak = a
			}
			sumSquares += v * v
			samples++
		}
		pending = copy(buf, buf[whole:n])

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return peak, sumSquares, samples, nil
			}
			return 0, 0, 0, readErr
		}
	}
}

func decode(s []byte, c fmtChunk) float64 {
	if c.format == formatFloat {
		if c.bitsPerSample == 64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(s))
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(s)))
	}

	switch c.bitsPerSample {
	case 8:
		return (float64(s[0]) - 128) / 128
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(s))) / 32768
	case 24:
		v := int32(s[0]) | int32(s[1])<<8 | int32(s[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / 8388608
	default:
		return float64(int32(binary.LittleEndian.Uint32(s))) / 2147483648
	}
}

func toDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(amplitude)
}
