package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fmueller/wavscribe/internal/platform"
	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const executableEnv = "WAVSCRIBE_WHISPER_PATH"

// Converter turns arbitrary audio into the 16 kHz mono WAV whisper-cli reads.
type Converter interface {
	ToWhisperWAV(ctx context.Context, in, out string) error
}

// Engine runs whisper-cli against a ggml model.
type Engine struct {
	Executable string
	ModelPath  string
	Converter  Converter
	Logger     *zap.Logger
}

var _ transcribe.Engine = (*Engine)(nil)

func NewEngine(executable, modelPath string, converter Converter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Executable: executable, ModelPath: modelPath, Converter: converter, Logger: logger}
}

// ResolveExecutable finds whisper-cli: the configured path, then
// $WAVSCRIBE_WHISPER_PATH, then the bundled locations next to the wavscribe
// binary, then $PATH.
func ResolveExecutable(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		if err := ensureExecutable(configured); err != nil {
			return "", fmt.Errorf("%w: whisper.executable: %v", transcribe.ErrEngineUnavailable, err)
		}
		return configured, nil
	}

	if override := strings.TrimSpace(os.Getenv(executableEnv)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return "", fmt.Errorf("%w: %s: %v", transcribe.ErrEngineUnavailable, executableEnv, err)
		}
		return override, nil
	}

	if self, err := os.Executable(); err == nil {
		for _, candidate := range BundledCandidates(self) {
			if ensureExecutable(candidate) == nil {
				return candidate, nil
			}
		}
	}

	if path, err := exec.LookPath(engineBinaryName()); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s not found; set whisper.executable or %s", transcribe.ErrEngineUnavailable, engineBinaryName(), executableEnv)
}

// BundledCandidates lists where release archives and local builds place
// whisper-cli relative to the wavscribe executable.
func BundledCandidates(self string) []string {
	binDir := filepath.Dir(self)
	name := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", name),
		filepath.Join(binDir, "libexec", "whisper", name),
		filepath.Join(binDir, "packaging", "whisper", platform.HostTarget(), name),
	}
}

// Transcribe runs whisper-cli and returns the text it wrote. An empty
// language lets the model detect it.
func (e *Engine) Transcribe(ctx context.Context, req transcribe.Request) (string, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if strings.TrimSpace(e.ModelPath) == "" {
		return "", fmt.Errorf("%w: model path is required", transcribe.ErrModelUnavailable)
	}
	if err := ensureExecutable(e.Executable); err != nil {
		return "", fmt.Errorf("%w: %v", transcribe.ErrEngineUnavailable, err)
	}

	audioPath, cleanup, err := e.prepareAudio(ctx, req.AudioPath)
	if err != nil {
		return "", err
	}
	defer cleanup()

	outBase := filepath.Join(os.TempDir(), "wavscribe-"+uuid.NewString())
	txtOut := outBase + ".txt"
	defer os.Remove(txtOut)

	args := buildArgs(e.ModelPath, audioPath, outBase, req.Language)
	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.Logger.Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return "", fmt.Errorf("whisper engine at %s is missing shared libraries (%s)", e.Executable, errText)
		}
		return "", fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}

func (e *Engine) prepareAudio(ctx context.Context, audioPath string) (string, func(), error) {
	noop := func() {}
	if strings.EqualFold(filepath.Ext(audioPath), ".wav") || e.Converter == nil {
		return audioPath, noop, nil
	}

	wavPath := filepath.Join(os.TempDir(), "wavscribe-"+uuid.NewString()+".wav")
	e.Logger.Debug("resampling audio for whisper", zap.String("audio", audioPath), zap.String("wav", wavPath))
	if err := e.Converter.ToWhisperWAV(ctx, audioPath, wavPath); err != nil {
		_ = os.Remove(wavPath)
		return "", noop, fmt.Errorf("prepare audio for whisper: %w", err)
	}
	return wavPath, func() { _ = os.Remove(wavPath) }, nil
}

func buildArgs(modelPath, audioPath, outBase, language string) []string {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = "auto"
	}
	return []string{"-m", modelPath, "-f", audioPath, "-nt", "-otxt", "-of", outBase, "-l", lang}
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(stderr)
	for _, pattern := range []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
	} {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}
