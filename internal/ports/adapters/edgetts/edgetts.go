// Package edgetts synthesizes narration with the edge-tts command line tool.
package edgetts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/mixcut/internal/ports"
	"github.com/forPelevin/mixcut/internal/types"
)

const DefaultVoice = "zh-CN-XiaoyiNeural"

// DurationProber measures the synthesized file.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

type Adapter struct {
	bin    string
	prober DurationProber
	log    zerolog.Logger
}

func New(binPath string, prober DurationProber, log zerolog.Logger) *Adapter {
	if binPath == "" {
		binPath = "edge-tts"
	}
	return &Adapter{
		bin:    binPath,
		prober: prober,
		log:    log.With().Str("component", "edgetts").Logger(),
	}
}

// Synthesize writes req.OutputDir/req.OutputFileName. An existing non-empty
// file is reused without calling the synthesizer.
func (a *Adapter) Synthesize(ctx context.Context, req ports.SynthesisRequest) (types.NarrationAudio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return types.NarrationAudio{}, errors.New("synthesize: empty text")
	}
	if req.OutputFileName == "" || req.OutputDir == "" {
		return types.NarrationAudio{}, errors.New("synthesize: output location is required")
	}
	out := filepath.Join(req.OutputDir, req.OutputFileName)

	if st, err := os.Stat(out); err == nil && st.Size() > 0 {
		a.log.Debug().Str("file", out).Msg("narration cached")
	} else {
		if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
			return types.NarrationAudio{}, err
		}
		cmd := exec.CommandContext(ctx, a.bin, args(req, out)...)
		cmd.WaitDelay = 5 * time.Second
		b, err := cmd.CombinedOutput()
		if err != nil {
			_ = os.Remove(out)
			return types.NarrationAudio{}, fmt.Errorf("edge-tts failed: %w\n%s", err, strings.TrimSpace(string(b)))
		}
		a.log.Info().Str("voice", voice(req.Voice)).Str("file", out).Msg("narration synthesized")
	}

	d, err := a.prober.ProbeDuration(ctx, out)
	if err != nil {
		return types.NarrationAudio{}, fmt.Errorf("narration duration: %w", err)
	}
	return types.NarrationAudio{Path: out, Duration: d}, nil
}

func args(req ports.SynthesisRequest, out string) []string {
	return []string{
		"--voice", voice(req.Voice),
		"--rate", signed(req.SpeechRate, "%"),
		"--volume", signed(req.Volume, "%"),
		"--pitch", signed(req.PitchRate, "Hz"),
		"--text=" + req.Text,
		"--write-media", out,
	}
}

func voice(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return DefaultVoice
}

// signed formats an adjustment the way edge-tts expects it: +10%, -5Hz.
func signed(n int, unit string) string {
	return fmt.Sprintf("%+d%s", n, unit)
}
