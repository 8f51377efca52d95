package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fmueller/wavscribe/internal/download"
	"github.com/fmueller/wavscribe/internal/media"
	"github.com/fmueller/wavscribe/internal/platform"
	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/fmueller/wavscribe/internal/wav2vec"
	"github.com/fmueller/wavscribe/internal/whisper"
	"go.uber.org/zap"
)

// engineFunc adapts a method on appState to transcribe.Engine so executables
// and models are only resolved when a request actually reaches the engine.
type engineFunc func(ctx context.Context, req transcribe.Request) (string, error)

func (f engineFunc) Transcribe(ctx context.Context, req transcribe.Request) (string, error) {
	return f(ctx, req)
}

func (a *appState) transcribe(ctx context.Context, method transcribe.Method, req transcribe.Request) (string, error) {
	if a.transcribeFn != nil {
		return a.transcribeFn(ctx, method, req)
	}

	dispatcher := transcribe.NewDispatcher(a.log(), map[transcribe.Method]transcribe.Engine{
		transcribe.MethodWav2Vec: engineFunc(a.runWav2Vec),
		transcribe.MethodWhisper: engineFunc(a.runWhisper),
	})

	a.log().Info("transcribing...", zap.String("method", string(method)), zap.String("audio", req.AudioPath), zap.String("language", req.Language))
	started := time.Now()
	text, err := dispatcher.Transcribe(ctx, method, req)
	if err != nil {
		return "", err
	}
	a.log().Info("transcription finished", zap.String("method", string(method)), zap.Duration("elapsed", time.Since(started)))
	return text, nil
}

func (a *appState) runWhisper(ctx context.Context, req transcribe.Request) (string, error) {
	cfg := a.config()

	executable, err := whisper.ResolveExecutable(cfg.Whisper.Executable)
	if err != nil {
		return "", err
	}

	model, err := a.ensureWhisperModel(ctx, cfg.Whisper.Model)
	if err != nil {
		return "", err
	}

	stop := a.spin(fmt.Sprintf("Transcribing with %s", transcribe.MethodWhisper))
	defer stop()

	engine := whisper.NewEngine(executable, model.Path, media.NewEncoder(cfg.Tools.FFmpeg, a.log()), a.log())
	return engine.Transcribe(ctx, req)
}

func (a *appState) runWav2Vec(ctx context.Context, req transcribe.Request) (string, error) {
	cfg := a.config()

	executable, err := wav2vec.ResolveExecutable(cfg.Wav2Vec.Executable)
	if err != nil {
		return "", err
	}

	stop := a.spin(fmt.Sprintf("Transcribing with %s", transcribe.MethodWav2Vec))
	defer stop()

	return wav2vec.NewEngine(executable, cfg.Wav2Vec.Model, a.log()).Transcribe(ctx, req)
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.config().Whisper.ModelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) ensureWhisperModel(ctx context.Context, modelRef string) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(modelRef, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}
	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.config().Whisper.AutoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("%w: model %q is missing at %s; run `wavscribe setup` or set whisper.auto_download = true",
			transcribe.ErrModelUnavailable, resolved.Name, resolved.Path)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.Fetch(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("%w: download model %q: %v", transcribe.ErrModelUnavailable, resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}
