package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultPreset    = "veryfast"
	DefaultFrameRate = 30
	stderrTailBytes  = 8 << 10
)

type Options struct {
	FFmpegPath  string
	FFprobePath string
	Preset      string
	FrameRate   int
	// FontsDir is handed to the subtitles filter so burned captions never
	// depend on system font lookup.
	FontsDir string
	Logger   zerolog.Logger
}

type Adapter struct {
	ffmpeg    string
	ffprobe   string
	preset    string
	frameRate int
	fontsDir  string
	log       zerolog.Logger
}

func New(o Options) *Adapter {
	if o.FFmpegPath == "" {
		o.FFmpegPath = "ffmpeg"
	}
	if o.FFprobePath == "" {
		o.FFprobePath = "ffprobe"
	}
	if o.Preset == "" {
		o.Preset = DefaultPreset
	}
	if o.FrameRate <= 0 {
		o.FrameRate = DefaultFrameRate
	}
	return &Adapter{
		ffmpeg:    o.FFmpegPath,
		ffprobe:   o.FFprobePath,
		preset:    o.Preset,
		frameRate: o.FrameRate,
		fontsDir:  o.FontsDir,
		log:       o.Logger.With().Str("component", "ffmpeg").Logger(),
	}
}

// EngineError is returned when an ffmpeg process fails. Stderr holds the tail
// of the process's diagnostic output.
type EngineError struct {
	Op     string
	Err    error
	Stderr string
}

func (e *EngineError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ffmpeg %s: %v\n%s", e.Op, e.Err, e.Stderr)
}

func (e *EngineError) Unwrap() error { return e.Err }

// run executes ffmpeg with machine-readable progress on stdout. When total is
// positive, onProgress receives the completed percentage. Cancelling ctx kills
// the process.
func (a *Adapter) run(ctx context.Context, op string, args []string, total time.Duration, onProgress func(float64)) error {
	full := append([]string{"-y", "-hide_banner", "-nostdin", "-nostats", "-progress", "pipe:1"}, args...)
	a.log.Debug().Str("op", op).Strs("args", full).Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, a.ffmpeg, full...)
	cmd.WaitDelay = 5 * time.Second
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stdout = &progressWriter{total: total, onProgress: onProgress}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &EngineError{Op: op, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}

// progressWriter parses the key=value stream of -progress output.
type progressWriter struct {
	total      time.Duration
	onProgress func(float64)
	pending    []byte
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.line(string(w.pending[:i]))
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

func (w *progressWriter) line(s string) {
	if w.onProgress == nil || w.total <= 0 {
		return
	}
	key, value, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports both keys in microseconds.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return
		}
		w.onProgress(percentOf(time.Duration(us)*time.Microsecond, w.total))
	case "progress":
		if value == "end" {
			w.onProgress(100)
		}
	}
}

func percentOf(done, total time.Duration) float64 {
	p := float64(done) / float64(total) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
