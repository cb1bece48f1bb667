//go:build integration

package itest

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func probeDuration(path string) (time.Duration, error) {
	out, err := ffprobe(path, "format=duration")
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", out, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// streamTypes lists the codec types of every stream in path.
func streamTypes(path string) ([]string, error) {
	out, err := ffprobe(path, "stream=codec_type")
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

func ffprobe(path, entries string) (string, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", entries,
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	return strings.TrimSpace(string(b)), nil
}

// lavfi renders a synthetic fixture with ffmpeg.
func lavfi(args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	b, err := exec.Command("ffmpeg", full...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg fixture: %w\n%s", err, string(b))
	}
	return nil
}

// findRepoRoot walks up from the working directory to the module root, where
// ./cmd/mixcut resolves.
func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "cmd", "mixcut")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("mixcut module root not found above " + dir)
		}
		dir = parent
	}
}
