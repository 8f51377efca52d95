// Package wav2vec runs an external wav2vec2 CTC decoder. The decoder prints
// the raw upper-case token stream with "|" between words; turning that into
// readable text is left to the transcribe package.
package wav2vec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fmueller/wavscribe/internal/transcribe"
	"go.uber.org/zap"
)

const (
	executableEnv     = "WAVSCRIBE_WAV2VEC_PATH"
	defaultExecutable = "wav2vec2-transcribe"
)

type Engine struct {
	Executable string
	Model      string
	Logger     *zap.Logger
}

var _ transcribe.Engine = (*Engine)(nil)

func NewEngine(executable, model string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Executable: executable, Model: model, Logger: logger}
}

// ResolveExecutable returns configured, $WAVSCRIBE_WAV2VEC_PATH or the
// decoder found on $PATH, in that order.
func ResolveExecutable(configured string) (string, error) {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = strings.TrimSpace(os.Getenv(executableEnv))
	}
	if name == "" {
		name = defaultExecutable
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: wav2vec2 decoder %q: %v", transcribe.ErrEngineUnavailable, name, err)
	}
	return path, nil
}

// Transcribe returns the decoder's raw output. The language hint is ignored:
// the checkpoint is single-language.
func (e *Engine) Transcribe(ctx context.Context, req transcribe.Request) (string, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if strings.TrimSpace(e.Model) == "" {
		return "", fmt.Errorf("%w: wav2vec model is required", transcribe.ErrModelUnavailable)
	}
	if _, err := os.Stat(e.Model); err != nil {
		return "", fmt.Errorf("%w: %v", transcribe.ErrModelUnavailable, err)
	}

	if _, err := exec.LookPath(e.Executable); err != nil {
		return "", fmt.Errorf("%w: %v", transcribe.ErrEngineUnavailable, err)
	}

	args := []string{"--model", e.Model, "--audio", req.AudioPath}
	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Logger.Debug("running wav2vec2 decoder", zap.String("decoder", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("wav2vec2 decode failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}
