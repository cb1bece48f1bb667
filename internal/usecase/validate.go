package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forPelevin/mixcut/internal/domain/subtitles"
	"github.com/forPelevin/mixcut/internal/types"
)

// ErrInvalidJob marks errors found before any work starts.
var ErrInvalidJob = errors.New("invalid job")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidJob, fmt.Sprintf(format, args...))
}

// ValidateJob checks a job without touching the filesystem or any external
// tool.
func ValidateJob(job types.Job) error {
	if job.Width <= 0 || job.Height <= 0 {
		return invalid("frame size %dx%d must be positive", job.Width, job.Height)
	}
	if len(job.Clips) == 0 {
		return invalid("no clips")
	}
	for i, c := range job.Clips {
		if strings.TrimSpace(c.Narration.Text) == "" {
			return invalid("clip %d: narration text is empty", i+1)
		}
		if len(c.Videos) == 0 {
			return invalid("clip %d: no source videos", i+1)
		}
		for j, v := range c.Videos {
			if strings.TrimSpace(v.Path) == "" {
				return invalid("clip %d: video %d: path is empty", i+1, j+1)
			}
			if v.Duration < 0 {
				return invalid("clip %d: video %d: negative duration", i+1, j+1)
			}
		}
		if err := validateStyle(c.Narration.Style); err != nil {
			return invalid("clip %d: subtitle style: %v", i+1, err)
		}
		if c.Title != nil {
			if err := validateStyle(c.Title.Style); err != nil {
				return invalid("clip %d: title style: %v", i+1, err)
			}
		}
	}
	if bg := job.Background; bg != nil && bg.Volume < 0 {
		return invalid("background volume %v is negative", bg.Volume)
	}
	return nil
}

func validateStyle(s types.CaptionStyle) error {
	if s.FontSize < 0 {
		return fmt.Errorf("font size %d is negative", s.FontSize)
	}
	if s.PositionY < 0 || s.PositionY > 1 {
		return fmt.Errorf("position_y %v is outside [0,1]", s.PositionY)
	}
	if s.FontColor != "" {
		if _, err := subtitles.ParseHexColor(s.FontColor); err != nil {
			return err
		}
	}
	return nil
}
