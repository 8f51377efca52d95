package version

import (
	"os/exec"
	"strings"
)

// Set at build time with -ldflags "-X github.com/fmueller/wavscribe/internal/version.Version=...".
var (
	Version = "0.3.0"
	Commit  = "unknown"
	Date    = "unknown"
)

type gitFunc func(args ...string) (string, error)

// Resolve returns Version, suffixed with `git describe` output when the
// binary runs from a checkout whose HEAD is not a release tag.
func Resolve() string {
	return resolve(Version, runGit)
}

func resolve(base string, git gitFunc) string {
	if base == "" {
		base = "0.0.0"
	}

	if suffix := describeSuffix(base, git); suffix != "" {
		return base + "-" + suffix
	}
	return base
}

func describeSuffix(base string, git gitFunc) string {
	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return ""
	}
	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return ""
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(desc, "v"+base+"-")
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
