package usecase

import (
	"sync"

	"github.com/forPelevin/mixcut/internal/ports"
)

// renderShare is the part of the overall progress taken by segment rendering;
// concatenation and mixing fill the rest.
const renderShare = 80.0

type nopEvents struct{}

func (nopEvents) Progress(float64)   {}
func (nopEvents) PointsDeducted(int) {}

// tracker folds per-segment and per-variant progress into one monotonic
// percentage.
type tracker struct {
	mu       sync.Mutex
	ev       ports.Events
	segments []float64
	last     float64
}

func newTracker(ev ports.Events, segments int) *tracker {
	return &tracker{ev: ev, segments: make([]float64, segments)}
}

// segment returns the progress callback of segment k.
func (t *tracker) segment(k int) func(float64) {
	return func(p float64) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if p > t.segments[k] {
			t.segments[k] = p
		}
		var sum float64
		for _, s := range t.segments {
			sum += s
		}
		t.emit(renderShare * sum / (100 * float64(len(t.segments))))
	}
}

// rendered marks rendering as finished, failed segments included.
func (t *tracker) rendered() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(renderShare)
}

func (t *tracker) variant(done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total <= 0 {
		t.emit(100)
		return
	}
	t.emit(renderShare + (100-renderShare)*float64(done)/float64(total))
}

// emit forwards p when it moves forward by at least one percent or reaches
// the end. Callers hold mu.
func (t *tracker) emit(p float64) {
	if p <= t.last {
		return
	}
	if p-t.last < 1 && p != renderShare && p < 100 {
		return
	}
	t.last = p
	t.ev.Progress(p)
}
