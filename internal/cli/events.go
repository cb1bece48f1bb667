package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/forPelevin/mixcut/internal/logging"
)

// events shows job progress as a bar on a terminal, or as log lines every
// ten percent otherwise. It also counts deducted points.
type events struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	log      zerolog.Logger
	lastLog  int
	deducted int
}

func newEvents(w io.Writer, showBar bool, log zerolog.Logger) *events {
	e := &events{log: log.With().Str("component", "progress").Logger()}
	if f, ok := w.(*os.File); ok && showBar && logging.ColorEnabled(f) {
		e.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("mixing"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return e
}

func (e *events) Progress(percent float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := int(percent)
	if e.bar != nil {
		_ = e.bar.Set(p)
		return
	}
	if p/10 > e.lastLog/10 || (p == 100 && e.lastLog < 100) {
		e.lastLog = p
		e.log.Info().Int("percent", p).Msg("progress")
	}
}

func (e *events) PointsDeducted(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deducted += n
}

func (e *events) points() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deducted
}

func (e *events) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bar != nil {
		_ = e.bar.Finish()
	}
}
