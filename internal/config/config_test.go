package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/wavscribe/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestLoadCustomPathOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[paths]
output_dir = "/srv/transcripts"

[whisper]
model = "small"
auto_download = false

[video]
width = 1280
height = 720
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, path, resolved)
	require.Equal(t, "/srv/transcripts", cfg.Paths.OutputDir)
	require.Equal(t, "./audio/cleaned/cleaned_audio.mp3", cfg.Paths.CleanedAudio)
	require.Equal(t, "small", cfg.Whisper.Model)
	require.False(t, cfg.Whisper.AutoDownload)
	require.Equal(t, 1280, cfg.Video.Width)
	require.Equal(t, 50, cfg.Video.Gray)
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	t.Parallel()

	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "config file not found")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[paths]\nnope = 1\n"), 0o644))

	_, _, _, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestLoadKeepsRelativeScriptPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[tools]\npipeline_script = \"./extract.sh\"\n"), 0o644))

	cfg, _, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "./extract.sh", cfg.Tools.PipelineScript)
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "odd width", mutate: func(c *config.Config) { c.Video.Width = 641 }, want: "even"},
		{name: "gray out of range", mutate: func(c *config.Config) { c.Video.Gray = 300 }, want: "video.gray"},
		{name: "empty output dir", mutate: func(c *config.Config) { c.Paths.OutputDir = "" }, want: "paths.output_dir"},
		{name: "empty ffmpeg", mutate: func(c *config.Config) { c.Tools.FFmpeg = "" }, want: "tools.ffmpeg"},
		{name: "empty whisper model", mutate: func(c *config.Config) { c.Whisper.Model = "" }, want: "whisper.model"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	require.NoError(t, config.CreateSample(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, toml.Unmarshal(contents, &cfg))
	require.Equal(t, config.Default(), cfg)
}
