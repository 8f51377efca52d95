// Package transcribe routes a transcription request to the engine for its
// method and normalises the result.
//
// Engines report failures as plain errors. The dispatcher wraps every failure
// in an *Error whose Reason tells the caller what went wrong, so nothing is
// ever written to disk in place of a transcript.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Method string

const (
	MethodWav2Vec Method = "wav2vec"
	MethodWhisper Method = "whisper"
)

var (
	// ErrEngineUnavailable is wrapped by engines whose executable cannot be found.
	ErrEngineUnavailable = errors.New("transcription engine unavailable")
	// ErrModelUnavailable is wrapped by engines whose model cannot be resolved.
	ErrModelUnavailable = errors.New("transcription model unavailable")
)

// ParseMethod accepts the method names understood by the files command.
func ParseMethod(value string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(value))); m {
	case MethodWav2Vec, MethodWhisper:
		return m, nil
	default:
		return "", fmt.Errorf("unknown transcription method %q (known methods: %s, %s)", value, MethodWav2Vec, MethodWhisper)
	}
}

// Request is a single model call. Language is an optional decoding hint and
// is forwarded untouched.
type Request struct {
	AudioPath string
	Language  string
}

type Engine interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

type Reason string

const (
	ReasonAudioMissing      Reason = "audio-missing"
	ReasonEngineUnavailable Reason = "engine-unavailable"
	ReasonModelUnavailable  Reason = "model-unavailable"
	ReasonEngineFailed      Reason = "engine-failed"
)

// Error is returned for every failed dispatch.
type Error struct {
	Method    Method
	Reason    Reason
	AudioPath string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s transcription of %s failed (%s): %v", e.Method, e.AudioPath, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason carried by err, or "" when err does
// not come from a dispatch.
func ReasonOf(err error) Reason {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Reason
	}
	return ""
}

type Dispatcher struct {
	engines map[Method]Engine
	logger  *zap.Logger
}

func NewDispatcher(logger *zap.Logger, engines map[Method]Engine) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{engines: engines, logger: logger}
}

// Transcribe checks the audio file, runs the engine for method and applies
// the method's text post-processing.
func (d *Dispatcher) Transcribe(ctx context.Context, method Method, req Request) (string, error) {
	fail := func(reason Reason, err error) error {
		return &Error{Method: method, Reason: reason, AudioPath: req.AudioPath, Err: err}
	}

	engine, ok := d.engines[method]
	if !ok || engine == nil {
		return "", fail(ReasonEngineUnavailable, fmt.Errorf("no engine registered for method %q", method))
	}

	if _, err := os.Stat(req.AudioPath); err != nil {
		return "", fail(ReasonAudioMissing, fmt.Errorf("audio file not found: %w", err))
	}

	d.logger.Debug("dispatching transcription", zap.String("method", string(method)), zap.String("audio", req.AudioPath), zap.String("language", req.Language))
	started := time.Now()

	text, err := engine.Transcribe(ctx, req)
	if err != nil {
		d.logger.Warn("transcription failed", zap.String("method", string(method)), zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		switch {
		case errors.Is(err, ErrEngineUnavailable):
			return "", fail(ReasonEngineUnavailable, err)
		case errors.Is(err, ErrModelUnavailable):
			return "", fail(ReasonModelUnavailable, err)
		default:
			return "", fail(ReasonEngineFailed, err)
		}
	}
	d.logger.Debug("transcription finished", zap.String("method", string(method)), zap.Duration("elapsed", time.Since(started)))

	if method == MethodWav2Vec {
		return Wav2VecText(text), nil
	}
	return text, nil
}
