package wav2vec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/stretchr/testify/require"
)

func writeStub(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "model.pth")
	require.NoError(t, os.WriteFile(path, []byte("weights"), 0o644))
	return path
}

func TestTranscribeReturnsRawTokens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	decoder := writeStub(t, dir, "decoder", "#!/bin/sh\necho \"$@\" > '"+argsFile+"'\necho 'HELLO|THERE|'\n")
	model := writeModel(t, dir)

	text, err := NewEngine(decoder, model, nil).Transcribe(context.Background(), transcribe.Request{AudioPath: "clip.mp3", Language: "de"})
	require.NoError(t, err)
	require.Equal(t, "HELLO|THERE|", text)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "--model "+model+" --audio clip.mp3\n", string(args))
}

func TestTranscribeMissingModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	decoder := writeStub(t, dir, "decoder", "#!/bin/sh\necho X\n")

	_, err := NewEngine(decoder, filepath.Join(dir, "model.pth"), nil).Transcribe(context.Background(), transcribe.Request{AudioPath: "clip.mp3"})
	require.ErrorIs(t, err, transcribe.ErrModelUnavailable)
}

func TestTranscribeDecoderFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	decoder := writeStub(t, dir, "decoder", "#!/bin/sh\necho 'CUDA error' >&2\nexit 1\n")

	_, err := NewEngine(decoder, writeModel(t, dir), nil).Transcribe(context.Background(), transcribe.Request{AudioPath: "clip.mp3"})
	require.Error(t, err)
	require.NotErrorIs(t, err, transcribe.ErrEngineUnavailable)
	require.Contains(t, err.Error(), "CUDA error")
}

func TestTranscribeDecoderNotExecutable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewEngine(filepath.Join(dir, "absent"), writeModel(t, dir), nil).Transcribe(context.Background(), transcribe.Request{AudioPath: "clip.mp3"})
	require.ErrorIs(t, err, transcribe.ErrEngineUnavailable)
}

func TestResolveExecutableConfigured(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	decoder := writeStub(t, dir, "decoder", "#!/bin/sh\n")

	resolved, err := ResolveExecutable(decoder)
	require.NoError(t, err)
	require.Equal(t, decoder, resolved)

	_, err = ResolveExecutable(filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, transcribe.ErrEngineUnavailable)
}
