package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmueller/wavscribe/internal/output"
	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFilesCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "files <method> [language]",
		Short: "Transcribe the extracted audio files with wav2vec or whisper",
		Long: `Transcribe the audio files left behind by the extraction pipeline.

  wav2vec   transcribes both the cleaned and the original audio and writes
            the two results as labelled sections
  whisper   transcribes the cleaned audio; the optional language code is
            passed to the model as is

The transcript is written to <output_dir>/<method>_transcript.txt.`,
		Example: `  wavscribe files wav2vec
  wavscribe files whisper de`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := transcribe.ParseMethod(args[0])
			if err != nil {
				return err
			}

			var lang string
			if len(args) > 1 {
				lang = strings.TrimSpace(args[1])
			}

			return app.runFiles(cmd.Context(), method, lang)
		},
	}
}

func (a *appState) runFiles(ctx context.Context, method transcribe.Method, lang string) error {
	var (
		text string
		err  error
	)

	switch method {
	case transcribe.MethodWav2Vec:
		text, err = a.wav2vecReport(ctx)
	case transcribe.MethodWhisper:
		if lang != "" {
			a.log().Info("using language", zap.String("language", lang))
		}
		text, err = a.transcribe(ctx, method, transcribe.Request{AudioPath: a.config().Paths.CleanedAudio, Language: lang})
	default:
		err = fmt.Errorf("unknown transcription method %q", method)
	}
	if err != nil {
		return err
	}

	if isBlankTranscript(text) {
		a.log().Warn(noSpeechHint())
	}

	path, err := output.Write(ctx, a.config().Paths.OutputDir, output.MethodTranscriptName(string(method)), text)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.outWriter(), "Transcript saved to %s\n", path)
	return nil
}

// wav2vecReport transcribes the cleaned and the original audio. Either one
// failing fails the whole report.
func (a *appState) wav2vecReport(ctx context.Context) (string, error) {
	paths := a.config().Paths

	cleaned, err := a.transcribe(ctx, transcribe.MethodWav2Vec, transcribe.Request{AudioPath: paths.CleanedAudio})
	if err != nil {
		return "", err
	}

	original, err := a.transcribe(ctx, transcribe.MethodWav2Vec, transcribe.Request{AudioPath: paths.OriginalAudio})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Speech to Text through %s\n", transcribe.MethodWav2Vec)
	fmt.Fprintf(&b, "Audio that has been cleaned: %s\n", cleaned)
	fmt.Fprintf(&b, "Audio that has not been cleaned: %s\n", original)
	return b.String(), nil
}
