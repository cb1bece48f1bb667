package types

import "time"

// MediaAsset is a source file on disk. A zero Duration means it has not been
// probed yet.
type MediaAsset struct {
	Path     string        `json:"path" yaml:"path"`
	Duration time.Duration `json:"duration,omitempty" yaml:"-"`
}

type PresetID string

type CaptionStyle struct {
	FontFamily string   `json:"font_family" yaml:"font_family"`
	FontSize   int      `json:"font_size" yaml:"font_size"`
	FontColor  string   `json:"font_color" yaml:"font_color"`
	Bold       bool     `json:"bold" yaml:"bold"`
	Italic     bool     `json:"italic" yaml:"italic"`
	Preset     PresetID `json:"preset,omitempty" yaml:"preset"`
	// PositionY is the anchor height as a fraction of the frame; 0 keeps the
	// role default.
	PositionY float64 `json:"position_y,omitempty" yaml:"position_y"`
}

type NarrationConfig struct {
	Text       string       `json:"text" yaml:"text"`
	Voice      string       `json:"voice" yaml:"voice"`
	SpeechRate int          `json:"speech_rate" yaml:"speech_rate"`
	Volume     int          `json:"volume" yaml:"volume"`
	PitchRate  int          `json:"pitch_rate" yaml:"pitch_rate"`
	Style      CaptionStyle `json:"style" yaml:"style"`
}

type TitleConfig struct {
	Text  string       `json:"text" yaml:"text"`
	Style CaptionStyle `json:"style" yaml:"style"`
}

// Clip is one shot of the final timeline.
type Clip struct {
	Videos          []MediaAsset    `json:"videos" yaml:"videos"`
	Narration       NarrationConfig `json:"narration" yaml:"narration"`
	Title           *TitleConfig    `json:"title,omitempty" yaml:"title"`
	OpenOriginAudio bool            `json:"open_origin_audio" yaml:"open_origin_audio"`
}

type NarrationAudio struct {
	Path     string
	Duration time.Duration
}

// ClipWithMarkup is a clip whose narration has been synthesized and whose
// subtitle document has been written.
type ClipWithMarkup struct {
	Clip      Clip
	Index     int
	Narration NarrationAudio
	ASSPath   string
}

type ClipWithSegments struct {
	ClipWithMarkup
	Segments []SegmentDescriptor
}

type SegmentDescriptor struct {
	VideoPath       string
	AudioPath       string
	Start           time.Duration
	Duration        time.Duration
	OutputPath      string
	Width           int
	Height          int
	ASSPath         string
	OpenOriginAudio bool
}

// TextSegment is a caption chunk with a window inside the narration.
type TextSegment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

type OutputVariant struct {
	Videos     []string      `json:"videos"`
	OutputPath string        `json:"output_path"`
	Duration   time.Duration `json:"duration"`
}

type BackgroundAudio struct {
	Path   string  `json:"path" yaml:"path"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// Job is the full parameter set of one mix-and-cut run.
type Job struct {
	Name       string           `json:"name" yaml:"name"`
	Width      int              `json:"width" yaml:"width"`
	Height     int              `json:"height" yaml:"height"`
	Clips      []Clip           `json:"clips" yaml:"clips"`
	Background *BackgroundAudio `json:"background,omitempty" yaml:"background"`
}

type Manifest struct {
	Job      string           `json:"job"`
	Variants []ManifestOutput `json:"variants"`
}

type ManifestOutput struct {
	ID          string   `json:"id"`
	File        string   `json:"file"`
	DurationSec float64  `json:"duration_sec"`
	Segments    []string `json:"segments"`
}
