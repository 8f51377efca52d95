package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrSourceMissing   = errors.New("source audio file does not exist")
	ErrEncoderNotFound = errors.New("ffmpeg not found; install ffmpeg or set tools.ffmpeg")
)

// EncodeError reports a non-zero ffmpeg exit together with what it printed.
type EncodeError struct {
	Args   []string
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg failed: %v (%s)", e.Err, e.Output)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Still describes the still-image video track muxed around an audio file.
type Still struct {
	Width        int
	Height       int
	Gray         uint8
	VideoCodec   string
	Tune         string
	AudioCodec   string
	AudioBitrate string
	PixelFormat  string
}

type VideoOptions struct {
	Source    string
	VideoDir  string
	ImagePath string
	Still     Still
}

// VideoPath is where WAVToMP4 writes the video for source.
func VideoPath(videoDir, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(videoDir, base+".mp4")
}

type Encoder struct {
	Binary string
	Logger *zap.Logger
}

func NewEncoder(binary string, logger *zap.Logger) *Encoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{Binary: binary, Logger: logger}
}

func (e *Encoder) resolve() (string, error) {
	path, err := exec.LookPath(e.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoderNotFound, err)
	}
	return path, nil
}

// WAVToMP4 loops a placeholder image over the source audio and returns the
// path of the written MP4. Nothing is executed when the source is missing.
// A single attempt is made.
func (e *Encoder) WAVToMP4(ctx context.Context, opts VideoOptions) (string, error) {
	if _, err := os.Stat(opts.Source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, opts.Source)
		}
		return "", fmt.Errorf("stat source audio: %w", err)
	}

	binary, err := e.resolve()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(opts.VideoDir, 0o755); err != nil {
		return "", fmt.Errorf("create video directory: %w", err)
	}
	if err := WritePlaceholder(opts.ImagePath, opts.Still.Width, opts.Still.Height, opts.Still.Gray); err != nil {
		return "", err
	}

	out := VideoPath(opts.VideoDir, opts.Source)
	args := stillImageArgs(opts.ImagePath, opts.Source, out, opts.Still)
	if err := e.run(ctx, binary, args); err != nil {
		return "", err
	}

	e.Logger.Info("converted audio to video", zap.String("source", opts.Source), zap.String("video", out))
	return out, nil
}

// ToWhisperWAV resamples any ffmpeg-readable audio to 16 kHz mono PCM.
func (e *Encoder) ToWhisperWAV(ctx context.Context, in, out string) error {
	binary, err := e.resolve()
	if err != nil {
		return err
	}

	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error", "-y", "-i", in, "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", out}
	return e.run(ctx, binary, args)
}

func stillImageArgs(image, audio, out string, s Still) []string {
	return []string{
		"-y", "-loop", "1", "-i", image,
		"-i", audio,
		"-c:v", s.VideoCodec, "-tune", s.Tune,
		"-c:a", s.AudioCodec, "-b:a", s.AudioBitrate,
		"-pix_fmt", s.PixelFormat,
		"-shortest", out,
	}
}

func (e *Encoder) run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	e.Logger.Debug("running ffmpeg", zap.String("ffmpeg", binary), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return &EncodeError{Args: args, Output: strings.TrimSpace(combined.String()), Err: err}
	}
	return nil
}
