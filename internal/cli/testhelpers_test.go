package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fmueller/wavscribe/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEnv struct {
	dir  string
	cfg  *config.Config
	app  *appState
	out  *bytes.Buffer
	logs *observer.ObservedLogs
}

// newTestEnv returns an app whose paths all live under a temp dir and whose
// logs are captured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		CleanedAudio:  filepath.Join(dir, "audio", "cleaned", "cleaned_audio.wav"),
		OriginalAudio: filepath.Join(dir, "audio", "original", "audio_extracted.wav"),
		OutputDir:     filepath.Join(dir, "output"),
		VideoDir:      filepath.Join(dir, "videos"),
		TempDir:       filepath.Join(dir, "temp"),
	}
	cfg.Whisper.AutoDownload = false
	cfg.Whisper.ModelDir = filepath.Join(dir, "models")

	core, logs := observer.New(zap.DebugLevel)
	out := new(bytes.Buffer)

	return &testEnv{
		dir:  dir,
		cfg:  &cfg,
		app:  &appState{cfg: &cfg, logger: zap.New(core), out: out, noProgress: true},
		out:  out,
		logs: logs,
	}
}

func (e *testEnv) run(args ...string) error {
	cmd := newRootCmd(e.app)
	cmd.SetOut(e.out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (e *testEnv) hasLog(t *testing.T, message string) bool {
	t.Helper()
	return e.logs.FilterMessage(message).Len() > 0
}

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func requireShellStubs(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables are POSIX shell scripts")
	}
}

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + strings.TrimLeft(body, "\n")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
