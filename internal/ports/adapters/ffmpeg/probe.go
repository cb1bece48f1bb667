package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (a *Adapter) probe(ctx context.Context, path string) (probeResult, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration:stream=codec_type",
		"-of", "json",
		"--", path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return probeResult{}, fmt.Errorf("ffprobe: %w\n%s", err, strings.TrimSpace(string(b)))
	}
	var res probeResult
	if err := json.Unmarshal(b, &res); err != nil {
		return probeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return res, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	res, err := a.probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %s: %w", path, err)
	}
	return parseDuration(res.Format.Duration)
}

func (a *Adapter) HasAudioStream(ctx context.Context, path string) bool {
	res, err := a.probe(ctx, path)
	if err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("audio probe failed, assuming no audio stream")
		return false
	}
	for _, s := range res.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			return true
		}
	}
	return false
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return 0, fmt.Errorf("parse duration %q: not a positive length", s)
	}
	return time.Duration(sec * float64(time.Second)), nil
}
