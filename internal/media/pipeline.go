package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// PipelineError is returned when the extraction script exits non-zero.
type PipelineError struct {
	Script string
	Output string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("audio processing with %s failed: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("audio processing with %s failed: %v\n%s", e.Script, e.Err, e.Output)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// RunPipeline runs the external extract-and-clean script with the video as
// its only argument and waits for it. Where the script writes its results is
// part of the script's own contract.
func RunPipeline(ctx context.Context, script, video string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, script, video)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	logger.Debug("running audio pipeline", zap.String("script", script), zap.String("video", video))
	err := cmd.Run()
	output := strings.TrimSpace(combined.String())
	if err != nil {
		return output, &PipelineError{Script: script, Output: output, Err: err}
	}
	return output, nil
}
