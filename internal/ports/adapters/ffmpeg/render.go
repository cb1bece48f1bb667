package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/forPelevin/mixcut/internal/types"
)

// RenderSegment cuts, scales, captions and re-voices one segment. It does not
// retry.
func (a *Adapter) RenderSegment(ctx context.Context, seg types.SegmentDescriptor, onProgress func(float64)) error {
	if err := os.MkdirAll(filepath.Dir(seg.OutputPath), 0o755); err != nil {
		return err
	}
	withOrigin := seg.OpenOriginAudio && a.HasAudioStream(ctx, seg.VideoPath)
	g := BuildSegmentGraph(seg, withOrigin, a.fontsDir)
	a.log.Debug().
		Str("video", seg.VideoPath).
		Dur("start", seg.Start).
		Dur("duration", seg.Duration).
		Bool("origin_audio", withOrigin).
		Msg("rendering segment")
	return a.run(ctx, "render segment", a.segmentArgs(seg, g), seg.Duration, onProgress)
}

func (a *Adapter) segmentArgs(seg types.SegmentDescriptor, g Graph) []string {
	return []string{
		"-i", seg.VideoPath,
		"-i", seg.AudioPath,
		"-filter_complex", g.String(),
		"-map", "[" + VideoOut + "]",
		"-map", "[" + AudioOut + "]",
		"-c:v", "libx264",
		"-preset", a.preset,
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(a.frameRate),
		"-c:a", "aac",
		"-ar", "44100",
		"-ac", "2",
		"-movflags", "+faststart",
		seg.OutputPath,
	}
}
