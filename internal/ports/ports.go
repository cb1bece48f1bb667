package ports

import (
	"context"
	"time"

	"github.com/forPelevin/mixcut/internal/types"
)

type SynthesisRequest struct {
	Text           string
	Voice          string
	SpeechRate     int
	Volume         int
	PitchRate      int
	OutputFileName string
	OutputDir      string
}

// Narrator turns narration text into speech. Implementations must be
// idempotent per OutputFileName.
type Narrator interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (types.NarrationAudio, error)
}

type Prober interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	// HasAudioStream reports false when probing fails.
	HasAudioStream(ctx context.Context, path string) bool
}

type MediaEngine interface {
	RenderSegment(ctx context.Context, seg types.SegmentDescriptor, onProgress func(percent float64)) error
	Concat(ctx context.Context, files []string, outPath string, onMerged func() error) error
	MixBackground(ctx context.Context, inPath, trackPath, outPath string, volume float64) error
}

// Events receives out-of-band job notifications.
type Events interface {
	Progress(percent float64)
	PointsDeducted(count int)
}
