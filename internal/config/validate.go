package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if c.Whisper.Model == "" {
		return errors.New("whisper.model must be set")
	}
	if c.Wav2Vec.Model == "" {
		return errors.New("wav2vec.model must be set")
	}
	return c.validateVideo()
}

func (c *Config) validatePaths() error {
	required := []struct {
		key   string
		value string
	}{
		{"paths.cleaned_audio", c.Paths.CleanedAudio},
		{"paths.original_audio", c.Paths.OriginalAudio},
		{"paths.output_dir", c.Paths.OutputDir},
		{"paths.video_dir", c.Paths.VideoDir},
		{"paths.temp_dir", c.Paths.TempDir},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must be set", r.key)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must be set")
	}
	if c.Tools.PipelineScript == "" {
		return errors.New("tools.pipeline_script must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	v := c.Video
	// libx264 with yuv420p rejects odd frame dimensions.
	if v.Width <= 0 || v.Height <= 0 || v.Width%2 != 0 || v.Height%2 != 0 {
		return fmt.Errorf("video.width and video.height must be positive even numbers, got %dx%d", v.Width, v.Height)
	}
	if v.Gray < 0 || v.Gray > 255 {
		return fmt.Errorf("video.gray must be between 0 and 255, got %d", v.Gray)
	}
	if v.VideoCodec == "" || v.AudioCodec == "" {
		return errors.New("video.video_codec and video.audio_codec must be set")
	}
	return nil
}
