package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/wavscribe/internal/platform"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ProjectConfigName is looked up in the working directory before the
// per-user config file.
const ProjectConfigName = "wavscribe.toml"

// Paths lists the files and directories shared between commands.
type Paths struct {
	CleanedAudio  string `toml:"cleaned_audio"`
	OriginalAudio string `toml:"original_audio"`
	OutputDir     string `toml:"output_dir"`
	VideoDir      string `toml:"video_dir"`
	TempDir       string `toml:"temp_dir"`
}

// Tools names the external executables.
type Tools struct {
	FFmpeg         string `toml:"ffmpeg"`
	PipelineScript string `toml:"pipeline_script"`
}

// Whisper configures the whisper-cli engine.
type Whisper struct {
	Model        string `toml:"model"`
	ModelDir     string `toml:"model_dir"`
	Executable   string `toml:"executable"`
	AutoDownload bool   `toml:"auto_download"`
}

// Wav2Vec configures the wav2vec2 CTC decoder.
type Wav2Vec struct {
	Model      string `toml:"model"`
	Executable string `toml:"executable"`
}

// Video controls the still-image MP4 produced from a WAV file.
type Video struct {
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Gray         int    `toml:"gray"`
	VideoCodec   string `toml:"video_codec"`
	Tune         string `toml:"tune"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`
	PixelFormat  string `toml:"pixel_format"`
}

type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Whisper Whisper `toml:"whisper"`
	Wav2Vec Wav2Vec `toml:"wav2vec"`
	Video   Video   `toml:"video"`
}

// Load locates, parses, and validates a configuration file. An explicit path
// must exist; otherwise the project file and then the user file are tried and
// defaults are used when neither is present. The resolved path and whether it
// existed are returned alongside the config.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandHome(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	if info, err := os.Stat(ProjectConfigName); err == nil && !info.IsDir() {
		return ProjectConfigName, true, nil
	}

	userPath, err := platform.DefaultConfigPath()
	if err != nil {
		return "", false, nil
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}

	return userPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.CleanedAudio,
		&c.Paths.OriginalAudio,
		&c.Paths.OutputDir,
		&c.Paths.VideoDir,
		&c.Paths.TempDir,
		&c.Tools.PipelineScript,
		&c.Whisper.ModelDir,
		&c.Whisper.Executable,
		&c.Wav2Vec.Executable,
	} {
		expanded, err := expandHome(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	c.Wav2Vec.Model = strings.TrimSpace(c.Wav2Vec.Model)
	return nil
}

// expandHome resolves a leading "~". Relative paths stay relative so that
// "./generate_transcripts.sh" is still executed from the working directory
// rather than looked up on $PATH.
func expandHome(value string) (string, error) {
	if value == "" || !strings.HasPrefix(value, "~") {
		return value, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if value == "~" {
		return home, nil
	}
	if value[1] == '/' || value[1] == '\\' {
		return filepath.Join(home, value[2:]), nil
	}
	return value, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
