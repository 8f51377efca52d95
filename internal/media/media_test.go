package media

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var defaultStill = Still{
	Width:        640,
	Height:       480,
	Gray:         50,
	VideoCodec:   "libx264",
	Tune:         "stillimage",
	AudioCodec:   "aac",
	AudioBitrate: "192k",
	PixelFormat:  "yuv420p",
}

func writeStub(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

// recordingFFmpeg logs its arguments and creates its last argument.
func recordingFFmpeg(t *testing.T, dir string) (binary, argsFile string) {
	t.Helper()
	argsFile = filepath.Join(dir, "ffmpeg.args")
	binary = writeStub(t, dir, "ffmpeg", "#!/bin/sh\necho \"$@\" > '"+argsFile+"'\nfor last; do :; done\n: > \"$last\"\n")
	return binary, argsFile
}

func TestStillImageArgs(t *testing.T) {
	t.Parallel()

	args := stillImageArgs("temp/blank.png", "sample.wav", "videos/sample.mp4", defaultStill)
	require.Equal(t, []string{
		"-y", "-loop", "1", "-i", "temp/blank.png",
		"-i", "sample.wav",
		"-c:v", "libx264", "-tune", "stillimage",
		"-c:a", "aac", "-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest", "videos/sample.mp4",
	}, args)
}

func TestVideoPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("videos", "sample.mp4"), VideoPath("videos", "/data/rec/sample.wav"))
	require.Equal(t, filepath.Join("out", "talk.v2.mp4"), VideoPath("out", "talk.v2.wav"))
}

func TestWritePlaceholder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "temp", "blank.png")
	require.NoError(t, WritePlaceholder(path, 640, 480, 50))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 640, img.Bounds().Dx())
	require.Equal(t, 480, img.Bounds().Dy())

	r, g, b, a := img.At(320, 240).RGBA()
	require.Equal(t, uint32(50*0x101), r)
	require.Equal(t, r, g)
	require.Equal(t, r, b)
	require.Equal(t, uint32(0xffff), a)

	require.Error(t, WritePlaceholder(path, 0, 480, 50))
}

func TestWAVToMP4MissingSourceDoesNotInvokeEncoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binary, argsFile := recordingFFmpeg(t, dir)

	_, err := NewEncoder(binary, nil).WAVToMP4(context.Background(), VideoOptions{
		Source:    filepath.Join(dir, "absent.wav"),
		VideoDir:  filepath.Join(dir, "videos"),
		ImagePath: filepath.Join(dir, "temp", "blank.png"),
		Still:     defaultStill,
	})
	require.ErrorIs(t, err, ErrSourceMissing)

	_, statErr := os.Stat(argsFile)
	require.True(t, os.IsNotExist(statErr), "encoder must not run")
}

func TestWAVToMP4EncoderMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "sample.wav")
	require.NoError(t, os.WriteFile(source, []byte("RIFF"), 0o644))

	_, err := NewEncoder(filepath.Join(dir, "no-ffmpeg"), nil).WAVToMP4(context.Background(), VideoOptions{
		Source:    source,
		VideoDir:  filepath.Join(dir, "videos"),
		ImagePath: filepath.Join(dir, "temp", "blank.png"),
		Still:     defaultStill,
	})
	require.ErrorIs(t, err, ErrEncoderNotFound)
}

func TestWAVToMP4Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binary, argsFile := recordingFFmpeg(t, dir)
	source := filepath.Join(dir, "sample.wav")
	require.NoError(t, os.WriteFile(source, []byte("RIFF"), 0o644))
	image := filepath.Join(dir, "temp", "blank.png")

	out, err := NewEncoder(binary, nil).WAVToMP4(context.Background(), VideoOptions{
		Source:    source,
		VideoDir:  filepath.Join(dir, "videos"),
		ImagePath: image,
		Still:     defaultStill,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "videos", "sample.mp4"), out)
	require.FileExists(t, out)
	require.FileExists(t, image)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(args), "-loop 1 -i "+image)
	require.Contains(t, string(args), "-tune stillimage")
	require.True(t, strings.HasSuffix(strings.TrimSpace(string(args)), "-shortest "+out))
}

func TestWAVToMP4EncoderFailureCarriesOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binary := writeStub(t, dir, "ffmpeg", "#!/bin/sh\necho 'Unknown encoder libx264' >&2\nexit 1\n")
	source := filepath.Join(dir, "sample.wav")
	require.NoError(t, os.WriteFile(source, []byte("RIFF"), 0o644))

	_, err := NewEncoder(binary, nil).WAVToMP4(context.Background(), VideoOptions{
		Source:    source,
		VideoDir:  filepath.Join(dir, "videos"),
		ImagePath: filepath.Join(dir, "temp", "blank.png"),
		Still:     defaultStill,
	})

	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	require.Contains(t, encErr.Output, "Unknown encoder libx264")
}

func TestToWhisperWAV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binary, argsFile := recordingFFmpeg(t, dir)
	out := filepath.Join(dir, "clip.wav")

	require.NoError(t, NewEncoder(binary, nil).ToWhisperWAV(context.Background(), "clip.mp3", out))
	require.FileExists(t, out)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(args), "-i clip.mp3 -ac 1 -ar 16000 -c:a pcm_s16le")
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	marker := filepath.Join(dir, "seen")
	ok := writeStub(t, dir, "ok.sh", "#!/bin/sh\necho \"$1\" > '"+marker+"'\necho done\n")

	out, err := RunPipeline(context.Background(), ok, "videos/sample.mp4", nil)
	require.NoError(t, err)
	require.Equal(t, "done", out)

	seen, err := os.ReadFile(marker)
	require.NoError(t, err)
	require.Equal(t, "videos/sample.mp4\n", string(seen))

	bad := writeStub(t, dir, "bad.sh", "#!/bin/sh\necho 'demucs: out of memory' >&2\nexit 2\n")
	_, err = RunPipeline(context.Background(), bad, "videos/sample.mp4", nil)

	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	require.Contains(t, pErr.Output, "out of memory")
}
