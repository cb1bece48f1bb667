// Package segments cuts source videos into narration-sized windows.
package segments

import (
	"path/filepath"
	"time"

	"github.com/forPelevin/mixcut/internal/ids"
	"github.com/forPelevin/mixcut/internal/types"
)

// Resolution is the granularity narration durations are rounded up to.
const Resolution = 10 * time.Millisecond

type PlanInput struct {
	Clip      types.ClipWithMarkup
	OutputDir string
	Width     int
	Height    int
	IDs       ids.Allocator
}

// RoundUp rounds d up to the next multiple of Resolution.
func RoundUp(d time.Duration) time.Duration {
	if r := d % Resolution; r != 0 {
		return d + Resolution - r
	}
	return d
}

// Count returns ceil(video/window).
func Count(video, window time.Duration) int {
	if video <= 0 || window <= 0 {
		return 0
	}
	return int((video + window - 1) / window)
}

// Plan covers every source video of the clip with back-to-back windows of the
// narration length. The last window of a video is shorter when the video is
// not an exact multiple of the narration. Video durations must be resolved.
func Plan(in PlanInput) []types.SegmentDescriptor {
	window := RoundUp(in.Clip.Narration.Duration)
	if window <= 0 {
		return nil
	}
	var out []types.SegmentDescriptor
	for _, v := range in.Clip.Clip.Videos {
		n := Count(v.Duration, window)
		for i := 0; i < n; i++ {
			start := time.Duration(i) * window
			out = append(out, types.SegmentDescriptor{
				VideoPath:       v.Path,
				AudioPath:       in.Clip.Narration.Path,
				Start:           start,
				Duration:        min(window, v.Duration-start),
				OutputPath:      filepath.Join(in.OutputDir, in.IDs.Next("segment")+".mp4"),
				Width:           in.Width,
				Height:          in.Height,
				ASSPath:         in.Clip.ASSPath,
				OpenOriginAudio: in.Clip.Clip.OpenOriginAudio,
			})
		}
	}
	return out
}
