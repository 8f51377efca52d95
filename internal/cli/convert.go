package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/wavscribe/internal/audio"
	"github.com/fmueller/wavscribe/internal/language"
	"github.com/fmueller/wavscribe/internal/media"
	"github.com/fmueller/wavscribe/internal/output"
	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultConvertTranscript = "whisper_transcript"
	placeholderName          = "blank.png"
	silenceThresholdDBFS     = -65
)

type convertOptions struct {
	wavPath  string
	langCode string
	outName  string
}

func newConvertCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <wav_file> [language_code] [output_filename]",
		Short: "Convert a WAV recording to video, clean it and transcribe it with whisper",
		Long: `Convert a WAV recording into an MP4 with a static image, run the audio
extraction and cleaning script on it, and transcribe the cleaned audio with
whisper.

An unsupported language code is not an error: whisper detects the language
instead. The transcript is written to <output_dir>/<output_filename>.txt
(default whisper_transcript.txt).

Supported language codes:
` + indent(language.RenderTable(), "  "),
		Example: `  wavscribe convert recording.wav zh
  wavscribe convert recording.wav zh my_transcript`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := convertOptions{wavPath: args[0]}
			if len(args) > 1 {
				opts.langCode = args[1]
			}
			if len(args) > 2 {
				opts.outName = args[2]
			}
			return app.runConvert(cmd.Context(), opts)
		},
	}
}

func (a *appState) runConvert(ctx context.Context, opts convertOptions) error {
	cfg := a.config()
	lang := a.resolveLanguage(opts.langCode)

	if strings.TrimSpace(opts.outName) != "" {
		a.log().Info("using custom output filename", zap.String("filename", opts.outName))
	}
	transcriptName := output.TranscriptName(opts.outName, defaultConvertTranscript)

	a.inspectInput(opts.wavPath)

	stop := a.spin("Converting to video")
	video, err := media.NewEncoder(cfg.Tools.FFmpeg, a.log()).WAVToMP4(ctx, media.VideoOptions{
		Source:    opts.wavPath,
		VideoDir:  cfg.Paths.VideoDir,
		ImagePath: filepath.Join(cfg.Paths.TempDir, placeholderName),
		Still: media.Still{
			Width:        cfg.Video.Width,
			Height:       cfg.Video.Height,
			Gray:         uint8(cfg.Video.Gray),
			VideoCodec:   cfg.Video.VideoCodec,
			Tune:         cfg.Video.Tune,
			AudioCodec:   cfg.Video.AudioCodec,
			AudioBitrate: cfg.Video.AudioBitrate,
			PixelFormat:  cfg.Video.PixelFormat,
		},
	})
	stop()
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	fmt.Fprintf(a.outWriter(), "Converted %s to %s\n", opts.wavPath, video)

	a.log().Info("starting audio extraction and preprocessing", zap.String("script", cfg.Tools.PipelineScript))
	stop = a.spin("Extracting audio")
	pipelineOut, err := media.RunPipeline(ctx, cfg.Tools.PipelineScript, video, a.log())
	stop()
	if err != nil {
		return err
	}
	if pipelineOut != "" {
		a.log().Debug("audio pipeline output", zap.String("output", pipelineOut))
	}
	a.log().Info("audio extraction and preprocessing complete")

	cleaned := cfg.Paths.CleanedAudio
	if _, err := os.Stat(cleaned); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cleaned audio file not found at %s", cleaned)
		}
		return fmt.Errorf("stat cleaned audio: %w", err)
	}

	text, err := a.transcribe(ctx, transcribe.MethodWhisper, transcribe.Request{AudioPath: cleaned, Language: lang})
	if err != nil {
		return err
	}
	if isBlankTranscript(text) {
		a.log().Warn(noSpeechHint())
	}

	path, err := output.Write(ctx, cfg.Paths.OutputDir, transcriptName, text)
	if err != nil {
		return err
	}

	w := a.outWriter()
	rule := strings.Repeat("-", 40)
	fmt.Fprintf(w, "Transcription complete! Saved to %s\n", path)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transcript preview:")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, output.Preview(text))
	fmt.Fprintln(w, rule)
	return nil
}

// resolveLanguage returns the code to hand to whisper. Codes outside the
// supported table fall back to auto-detection with a warning.
func (a *appState) resolveLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	l, ok := language.Lookup(code)
	if !ok {
		a.log().Warn("unsupported language code; using auto-detection", zap.String("code", code))
		return ""
	}

	a.log().Info("using language", zap.String("language", l.Name), zap.String("code", l.Code()))
	return l.Code()
}

// inspectInput logs what the WAV header says about the recording. Problems
// are reported but never stop the conversion; ffmpeg has the final say.
func (a *appState) inspectInput(path string) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return
	}

	info, err := audio.Inspect(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.log().Warn("could not read wav header", zap.String("audio", path), zap.Error(err))
		}
		return
	}

	a.log().Debug("input audio",
		zap.String("audio", path),
		zap.Uint16("channels", info.Channels),
		zap.Uint32("sample_rate", info.SampleRate),
		zap.Duration("duration", info.Duration),
	)
	if info.Silent(silenceThresholdDBFS) {
		a.log().Warn("input audio is near-silent; the transcript will likely be empty",
			zap.String("audio", path),
			zap.Float64("rms_dbfs", info.RMSdBFS),
			zap.Float64("peak_dbfs", info.PeakdBFS),
		)
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
