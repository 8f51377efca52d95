package config

// Default returns the configuration used when no file is present. The paths
// match the layout expected by generate_transcripts.sh.
func Default() Config {
	return Config{
		Paths: Paths{
			CleanedAudio:  "./audio/cleaned/cleaned_audio.mp3",
			OriginalAudio: "./audio/original/audio_extracted.mp3",
			OutputDir:     "./output",
			VideoDir:      "videos",
			TempDir:       "temp",
		},
		Tools: Tools{
			FFmpeg:         "ffmpeg",
			PipelineScript: "./generate_transcripts.sh",
		},
		Whisper: Whisper{
			Model:        "base",
			AutoDownload: true,
		},
		Wav2Vec: Wav2Vec{
			Model: "model.pth",
		},
		Video: Video{
			Width:        640,
			Height:       480,
			Gray:         50,
			VideoCodec:   "libx264",
			Tune:         "stillimage",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			PixelFormat:  "yuv420p",
		},
	}
}
