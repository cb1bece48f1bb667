package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/forPelevin/mixcut/internal/governor"
	"github.com/forPelevin/mixcut/internal/ids"
	"github.com/forPelevin/mixcut/internal/jobfile"
	"github.com/forPelevin/mixcut/internal/ports"
	"github.com/forPelevin/mixcut/internal/ports/adapters/edgetts"
	"github.com/forPelevin/mixcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/mixcut/internal/types"
	"github.com/forPelevin/mixcut/internal/usecase"
	"github.com/forPelevin/mixcut/internal/workspace"
)

type Config struct {
	// CacheDir is the scratch workspace. It is cleared at the start of every
	// job. If empty, defaults to ".cache".
	CacheDir string
	OutDir   string
	FontsDir string

	FFmpegPath  string
	FFprobePath string
	Preset      string

	TTSBin string
	// Voice is used for clips that do not name one.
	Voice string

	// Parallelism sizes the render gate; 0 uses the available CPUs.
	Parallelism   int
	ConcatTimeout time.Duration

	Logger zerolog.Logger
	Events ports.Events
}

func (c Config) Validate() error {
	if c.Parallelism < 0 {
		return errors.New("parallelism must be >= 0")
	}
	if c.ConcatTimeout < 0 {
		return errors.New("concat timeout must be >= 0")
	}
	if c.FontsDir != "" {
		st, err := os.Stat(c.FontsDir)
		if err != nil {
			return fmt.Errorf("fonts dir: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("fonts dir %s is not a directory", c.FontsDir)
		}
	}
	return nil
}

func (c Config) engine() *ffmpeg.Adapter {
	return ffmpeg.New(ffmpeg.Options{
		FFmpegPath:  c.FFmpegPath,
		FFprobePath: c.FFprobePath,
		Preset:      c.Preset,
		FontsDir:    c.FontsDir,
		Logger:      c.Logger,
	})
}

// Run executes job and writes its variants plus manifest.json into a fresh
// run directory under OutDir.
func Run(ctx context.Context, cfg Config, job types.Job) ([]types.OutputVariant, error) {
	log := cfg.Logger.With().Str("component", "pipeline").Logger()
	if err := jobfile.CheckMedia(job); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidJob, err)
	}

	// adapters
	engine := cfg.engine()
	narrator := edgetts.New(cfg.TTSBin, engine, cfg.Logger)

	capacity := governor.DefaultCapacity()
	if cfg.Parallelism > 0 {
		capacity = governor.Capacity(cfg.Parallelism)
	}

	uc := usecase.New(usecase.Deps{
		Narrator: narrator,
		Prober:   engine,
		Engine:   engine,
		Events:   cfg.Events,
		IDs:      ids.NewSequence(),
		Governor: governor.New(capacity),
		Logger:   cfg.Logger,
	})

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	ws, err := workspace.New(baseCache)
	if err != nil {
		return nil, err
	}
	log.Info().Str("cache", ws.Root()).Int("render_slots", capacity).Msg("preparing workspace")

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, job.Name, time.Now().UTC())
	log.Info().Str("dir", runOutDir).Msg("output run dir")

	res, err := uc.Run(ctx, usecase.Input{
		Job:           withVoice(job, cfg.Voice),
		Workspace:     ws,
		OutDir:        runOutDir,
		ConcatTimeout: cfg.ConcatTimeout,
	})
	if err != nil {
		return res.Variants, err
	}

	b, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return res.Variants, fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return res.Variants, err
	}
	log.Info().Int("variants", len(res.Variants)).Str("manifest", manifestPath).Msg("manifest written")
	return res.Variants, nil
}

// MediaDuration probes the length of a media file.
func MediaDuration(ctx context.Context, cfg Config, path string) (time.Duration, error) {
	return cfg.engine().ProbeDuration(ctx, path)
}

// withVoice returns a copy of job whose clips without a voice use voice.
func withVoice(job types.Job, voice string) types.Job {
	if strings.TrimSpace(voice) == "" {
		return job
	}
	clips := make([]types.Clip, len(job.Clips))
	copy(clips, job.Clips)
	for i := range clips {
		if strings.TrimSpace(clips[i].Narration.Voice) == "" {
			clips[i].Narration.Voice = voice
		}
	}
	job.Clips = clips
	return job
}

func buildRunOutDir(outRoot, jobName string, now time.Time) string {
	name := normalizePathSegment(jobName)
	if name == "" {
		name = "job"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", jobName, now.UTC().UnixNano())
	suffix := ids.Digest(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var (
	_ ports.MediaEngine = (*ffmpeg.Adapter)(nil)
	_ ports.Prober      = (*ffmpeg.Adapter)(nil)
	_ ports.Narrator    = (*edgetts.Adapter)(nil)
)
