package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	transcriptExt  = ".txt"
	previewRunes   = 200
	lockRetryDelay = 50 * time.Millisecond
)

// TranscriptName returns name with a single ".txt" suffix. An empty name
// falls back to fallback.
func TranscriptName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if strings.HasSuffix(name, transcriptExt) {
		return name
	}
	return name + transcriptExt
}

// MethodTranscriptName is the file name used by the files command.
func MethodTranscriptName(method string) string {
	return method + "_transcript" + transcriptExt
}

// Write stores text at dir/name, replacing any existing file. An advisory
// lock on a sibling ".lock" file serialises concurrent writers; the last
// writer still wins.
func Write(ctx context.Context, dir, name, text string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("transcript file name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock transcript %s: %w", path, err)
	}
	if !locked {
		return "", fmt.Errorf("lock transcript %s: not acquired", path)
	}
	// The lock file is never removed; waiters may already hold it open.
	defer func() { _ = lock.Unlock() }()

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", path, err)
	}
	return path, nil
}

// Preview shortens text to its first 200 characters followed by "...".
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
