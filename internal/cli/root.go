package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fmueller/wavscribe/internal/config"
	"github.com/fmueller/wavscribe/internal/logging"
	"github.com/fmueller/wavscribe/internal/transcribe"
	"github.com/fmueller/wavscribe/internal/version"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// Commands carrying this annotation run without loading the config file.
const skipConfigAnnotation = "wavscribe/skip-config"

type appState struct {
	configPath string
	verbose    bool
	jsonLogs   bool
	noProgress bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	transcribeFn func(ctx context.Context, method transcribe.Method, req transcribe.Request) (string, error)
	spinnerFn    func(enabled bool, description string) stopFunc
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&appState{})
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wavscribe",
		Short: "Transcribe speech recordings with whisper and wav2vec2",
		Long: `wavscribe turns recorded speech into text transcripts.

  files     transcribe the extracted audio files with wav2vec2 or whisper
  convert   wrap a WAV recording in an MP4, run the extraction pipeline on it
            and transcribe the cleaned audio with whisper`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&app.configPath, "config", app.configPath, "Path to a config file (default ./wavscribe.toml, then the user config)")
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")

	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newConvertCmd(app))
	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (a *appState) init(cmd *cobra.Command) error {
	if a.out == nil {
		a.out = cmd.OutOrStdout()
	}
	if a.logger == nil {
		logger, err := logging.New(logging.Options{Verbose: a.verbose, JSON: a.jsonLogs, RunID: uuid.NewString()})
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		a.logger = logger
	}

	if cmd.Annotations[skipConfigAnnotation] != "" || a.cfg != nil {
		return nil
	}

	cfg, path, exists, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if exists {
		a.log().Debug("loaded config", zap.String("path", path))
	} else {
		a.log().Debug("no config file found; using defaults")
	}
	a.cfg = cfg
	return nil
}

func (a *appState) config() *config.Config {
	if a.cfg == nil {
		cfg := config.Default()
		a.cfg = &cfg
	}
	return a.cfg
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// spin starts a spinner. Only one runs at a time; callers stop it before any
// other stderr progress output.
func (a *appState) spin(description string) stopFunc {
	if a.spinnerFn != nil {
		return a.spinnerFn(a.progressEnabled(), description)
	}
	return startSpinner(a.progressEnabled(), description)
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}
