package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/mixcut/internal/domain/segments"
	"github.com/forPelevin/mixcut/internal/domain/subtitles"
	"github.com/forPelevin/mixcut/internal/governor"
	"github.com/forPelevin/mixcut/internal/ids"
	"github.com/forPelevin/mixcut/internal/ports"
	"github.com/forPelevin/mixcut/internal/types"
	"github.com/forPelevin/mixcut/internal/workspace"
)

const (
	DefaultConcatTimeout    = 5 * time.Minute
	DefaultBackgroundVolume = 0.3
)

type Deps struct {
	Narrator ports.Narrator
	Prober   ports.Prober
	Engine   ports.MediaEngine
	Events   ports.Events
	IDs      ids.Allocator
	Governor *governor.Governor
	Logger   zerolog.Logger
}

type Usecase struct {
	d   Deps
	log zerolog.Logger
}

func New(d Deps) Usecase {
	if d.Events == nil {
		d.Events = nopEvents{}
	}
	if d.IDs == nil {
		d.IDs = ids.NewSequence()
	}
	if d.Governor == nil {
		d.Governor = governor.New(governor.DefaultCapacity())
	}
	return Usecase{d: d, log: d.Logger.With().Str("component", "usecase").Logger()}
}

type Input struct {
	Job       types.Job
	Workspace *workspace.Workspace
	// OutDir receives the finished variants.
	OutDir        string
	ConcatTimeout time.Duration
}

type Result struct {
	Variants []types.OutputVariant
	Manifest types.Manifest
}

// scratch holds the workspace subdirectories of one run.
type scratch struct {
	audio, subtitles, segments string
}

// Run executes a whole job. Variants that fail to concatenate are left out of
// the result; a job that yields no variants is not an error.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	if err := ValidateJob(in.Job); err != nil {
		return Result{}, err
	}
	if in.Workspace == nil {
		return Result{}, errors.New("workspace is required")
	}
	if strings.TrimSpace(in.OutDir) == "" {
		return Result{}, errors.New("output dir is required")
	}
	if in.ConcatTimeout <= 0 {
		in.ConcatTimeout = DefaultConcatTimeout
	}

	ws := in.Workspace
	if err := ws.Acquire(); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			u.log.Warn().Err(err).Msg("release workspace")
		}
	}()
	u.log.Info().Str("workspace", ws.Root()).Msg("clearing workspace")
	if err := ws.Clear(); err != nil {
		return Result{}, err
	}
	dirs, err := makeScratch(ws)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return Result{}, err
	}

	marked, err := u.generateMarkup(ctx, in.Job, dirs)
	if err != nil {
		return Result{}, err
	}
	planned, err := u.planSegments(ctx, in.Job, marked, dirs)
	if err != nil {
		return Result{}, err
	}

	total := 0
	for _, c := range planned {
		total += len(c.Segments)
	}
	prog := newTracker(u.d.Events, total)
	failed, err := u.renderAll(ctx, planned, prog)
	if err != nil {
		return Result{}, err
	}

	n := MinVariantCount(planned)
	u.log.Info().Int("variants", n).Int("segments", total).Int("failed_segments", len(failed)).Msg("segments rendered")

	res := Result{Manifest: types.Manifest{Job: in.Job.Name}}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v, ok := u.buildVariant(ctx, in, i, planned, failed)
		prog.variant(i+1, n)
		if !ok {
			continue
		}
		res.Variants = append(res.Variants, v)
		res.Manifest.Variants = append(res.Manifest.Variants, manifestEntry(in.OutDir, i, v))
	}
	prog.variant(n, n)
	return res, nil
}

func makeScratch(ws *workspace.Workspace) (scratch, error) {
	var s scratch
	for _, d := range []struct {
		name string
		dst  *string
	}{
		{"audio", &s.audio},
		{"subtitles", &s.subtitles},
		{"segments", &s.segments},
	} {
		p, err := ws.Dir(d.name)
		if err != nil {
			return scratch{}, fmt.Errorf("workspace %s: %w", d.name, err)
		}
		*d.dst = p
	}
	return s, nil
}

func (u Usecase) generateMarkup(ctx context.Context, job types.Job, dirs scratch) ([]types.ClipWithMarkup, error) {
	out := make([]types.ClipWithMarkup, 0, len(job.Clips))
	for i, c := range job.Clips {
		audio, err := u.narrate(ctx, c.Narration, dirs.audio)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i+1, err)
		}
		doc, err := subtitles.RenderClipASS(subtitles.ClipMarkupInput{
			Text:     c.Narration.Text,
			Style:    c.Narration.Style,
			Title:    c.Title,
			Duration: audio.Duration,
			Width:    job.Width,
			Height:   job.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("clip %d markup: %w", i+1, err)
		}
		assPath := filepath.Join(dirs.subtitles, fmt.Sprintf("clip-%03d.ass", i+1))
		if err := subtitles.WriteDocument(assPath, doc); err != nil {
			return nil, fmt.Errorf("clip %d markup: %w", i+1, err)
		}
		u.log.Debug().Int("clip", i+1).Dur("narration", audio.Duration).Str("ass", assPath).Msg("markup written")
		out = append(out, types.ClipWithMarkup{Clip: c, Index: i, Narration: audio, ASSPath: assPath})
	}
	return out, nil
}

// narrate synthesizes the narration of a clip. The file name depends only on
// the voice parameters and the text.
func (u Usecase) narrate(ctx context.Context, n types.NarrationConfig, dir string) (types.NarrationAudio, error) {
	key := ids.Digest(n.Voice, strconv.Itoa(n.SpeechRate), strconv.Itoa(n.Volume), strconv.Itoa(n.PitchRate), n.Text)
	audio, err := u.d.Narrator.Synthesize(ctx, ports.SynthesisRequest{
		Text:           n.Text,
		Voice:          n.Voice,
		SpeechRate:     n.SpeechRate,
		Volume:         n.Volume,
		PitchRate:      n.PitchRate,
		OutputFileName: "narration-" + key + ".mp3",
		OutputDir:      dir,
	})
	if err != nil {
		return types.NarrationAudio{}, fmt.Errorf("synthesize narration: %w", err)
	}
	if audio.Duration <= 0 {
		return types.NarrationAudio{}, fmt.Errorf("synthesize narration: %s has no duration", audio.Path)
	}
	return audio, nil
}

func (u Usecase) planSegments(ctx context.Context, job types.Job, clips []types.ClipWithMarkup, dirs scratch) ([]types.ClipWithSegments, error) {
	probed := map[string]time.Duration{}
	out := make([]types.ClipWithSegments, 0, len(clips))
	for _, c := range clips {
		pc, err := u.planClip(ctx, job, c, dirs, probed)
		if err != nil {
			return nil, fmt.Errorf("plan clip %d: %w", c.Index+1, err)
		}
		out = append(out, pc)
	}
	return out, nil
}

func (u Usecase) planClip(ctx context.Context, job types.Job, c types.ClipWithMarkup, dirs scratch, probed map[string]time.Duration) (types.ClipWithSegments, error) {
	if c.Narration.Path == "" {
		audio, err := u.narrate(ctx, c.Clip.Narration, dirs.audio)
		if err != nil {
			return types.ClipWithSegments{}, err
		}
		c.Narration = audio
	}

	videos := make([]types.MediaAsset, len(c.Clip.Videos))
	for i, v := range c.Clip.Videos {
		if v.Duration <= 0 {
			d, ok := probed[v.Path]
			if !ok {
				var err error
				if d, err = u.d.Prober.ProbeDuration(ctx, v.Path); err != nil {
					return types.ClipWithSegments{}, err
				}
				probed[v.Path] = d
			}
			v.Duration = d
		}
		videos[i] = v
	}
	c.Clip.Videos = videos

	segs := segments.Plan(segments.PlanInput{
		Clip:      c,
		OutputDir: dirs.segments,
		Width:     job.Width,
		Height:    job.Height,
		IDs:       u.d.IDs,
	})
	u.log.Debug().Int("clip", c.Index+1).Int("segments", len(segs)).Msg("segments planned")
	return types.ClipWithSegments{ClipWithMarkup: c, Segments: segs}, nil
}

// renderAll renders every planned segment through the governor. A failed
// segment does not stop the others; the returned set holds the output paths
// that could not be rendered.
func (u Usecase) renderAll(ctx context.Context, clips []types.ClipWithSegments, prog *tracker) (map[string]error, error) {
	var (
		tasks []governor.Task
		descs []types.SegmentDescriptor
	)
	for _, c := range clips {
		for _, seg := range c.Segments {
			seg := seg
			k := len(tasks)
			onProgress := prog.segment(k)
			tasks = append(tasks, func(ctx context.Context) error {
				return u.d.Engine.RenderSegment(ctx, seg, onProgress)
			})
			descs = append(descs, seg)
		}
	}

	errs := u.d.Governor.Run(ctx, tasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	failed := map[string]error{}
	for k, err := range errs {
		if err == nil {
			continue
		}
		failed[descs[k].OutputPath] = err
		u.log.Error().Err(err).Str("video", descs[k].VideoPath).Dur("start", descs[k].Start).Msg("segment render failed")
	}
	prog.rendered()
	return failed, nil
}

// MinVariantCount is the smallest segment count among clips that have
// segments, or 0 when none do.
func MinVariantCount(clips []types.ClipWithSegments) int {
	n := 0
	for _, c := range clips {
		if len(c.Segments) == 0 {
			continue
		}
		if n == 0 || len(c.Segments) < n {
			n = len(c.Segments)
		}
	}
	return n
}

// SelectSegments picks, from every clip, its only segment or its i-th one.
func SelectSegments(clips []types.ClipWithSegments, i int) []types.SegmentDescriptor {
	var out []types.SegmentDescriptor
	for _, c := range clips {
		switch {
		case len(c.Segments) == 0:
		case len(c.Segments) == 1:
			out = append(out, c.Segments[0])
		case i < len(c.Segments):
			out = append(out, c.Segments[i])
		}
	}
	return out
}

func (u Usecase) buildVariant(ctx context.Context, in Input, i int, clips []types.ClipWithSegments, failed map[string]error) (types.OutputVariant, bool) {
	log := u.log.With().Int("variant", i+1).Logger()
	chosen := SelectSegments(clips, i)

	v := types.OutputVariant{OutputPath: filepath.Join(in.OutDir, fmt.Sprintf("variant-%03d.mp4", i+1))}
	for _, s := range chosen {
		if err, bad := failed[s.OutputPath]; bad {
			log.Warn().Err(err).Str("segment", s.OutputPath).Msg("variant skipped: segment missing")
			return types.OutputVariant{}, false
		}
		v.Videos = append(v.Videos, s.OutputPath)
		v.Duration += s.Duration
	}

	cctx, cancel := context.WithTimeout(ctx, in.ConcatTimeout)
	defer cancel()
	err := u.d.Engine.Concat(cctx, v.Videos, v.OutputPath, func() error {
		u.d.Events.PointsDeducted(1)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error().Dur("timeout", in.ConcatTimeout).Msg("variant skipped: concat timed out")
		} else {
			log.Error().Err(err).Msg("variant skipped: concat failed")
		}
		return types.OutputVariant{}, false
	}

	v.OutputPath = u.mixBackground(ctx, in.Job.Background, v.OutputPath, log)
	log.Info().Str("output", v.OutputPath).Dur("duration", v.Duration).Msg("variant ready")
	return v, true
}

// mixBackground returns the path of the mixed file, or out unchanged when
// there is nothing to mix or mixing fails.
func (u Usecase) mixBackground(ctx context.Context, bg *types.BackgroundAudio, out string, log zerolog.Logger) string {
	if bg == nil || strings.TrimSpace(bg.Path) == "" {
		return out
	}
	if _, err := os.Stat(bg.Path); err != nil {
		log.Warn().Err(err).Str("track", bg.Path).Msg("background track unavailable, keeping unmixed output")
		return out
	}
	vol := bg.Volume
	if vol == 0 {
		vol = DefaultBackgroundVolume
	}
	ext := filepath.Ext(out)
	mixed := strings.TrimSuffix(out, ext) + "_bg" + ext
	if err := u.d.Engine.MixBackground(ctx, out, bg.Path, mixed, vol); err != nil {
		log.Warn().Err(err).Str("track", bg.Path).Msg("background mix failed, keeping unmixed output")
		_ = os.Remove(mixed)
		return out
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", out).Msg("remove unmixed output")
	}
	return mixed
}

func manifestEntry(outDir string, i int, v types.OutputVariant) types.ManifestOutput {
	rel, err := filepath.Rel(outDir, v.OutputPath)
	if err != nil {
		rel = v.OutputPath
	}
	segs := make([]string, len(v.Videos))
	for k, p := range v.Videos {
		segs[k] = filepath.Base(p)
	}
	return types.ManifestOutput{
		ID:          fmt.Sprintf("%03d", i+1),
		File:        filepath.ToSlash(rel),
		DurationSec: v.Duration.Seconds(),
		Segments:    segs,
	}
}
