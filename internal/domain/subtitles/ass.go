package subtitles

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/mixcut/internal/types"
)

type Kind int

const (
	KindSubtitle Kind = iota
	KindTitle
)

const (
	SubtitleTrack = "Subtitle"
	TitleTrack    = "Title"

	DefaultFontFamily       = "Noto Sans CJK SC"
	DefaultSubtitleFontSize = 36
	DefaultTitleFontSize    = 54
	defaultFontColor        = "FFFFFF"

	// portraitScale compensates for the higher resolution of portrait canvases.
	portraitScale = 1 + 1080.0/1920.0/2
)

type CaptionInput struct {
	Text      string
	Style     types.CaptionStyle
	Start     time.Duration
	Duration  time.Duration
	Kind      Kind
	PosX      int
	PosY      int
	TrackName string
	Width     int
	Height    int
}

// Caption is one style line plus the dialogue line that uses it.
type Caption struct {
	StyleName    string
	StyleLine    string
	DialogueLine string
}

type roleStyle struct {
	fill, outline, back string
	outlineWidth        float64
	shadow              float64
	borderStyle         int
}

func roleDefaults(kind Kind, fontColor string) roleStyle {
	if kind == KindTitle {
		return roleStyle{fill: fontColor, outline: "000000", back: "000000", outlineWidth: 3, shadow: 1, borderStyle: borderOutline}
	}
	return roleStyle{fill: fontColor, outline: "000000", back: "000000", outlineWidth: 2, borderStyle: borderOutline}
}

// WithDefaults fills unset style fields with the defaults of the given role.
func WithDefaults(s types.CaptionStyle, kind Kind) types.CaptionStyle {
	if strings.TrimSpace(s.FontFamily) == "" {
		s.FontFamily = DefaultFontFamily
	}
	if s.FontSize <= 0 {
		s.FontSize = DefaultSubtitleFontSize
		if kind == KindTitle {
			s.FontSize = DefaultTitleFontSize
		}
	}
	if strings.TrimSpace(s.FontColor) == "" {
		s.FontColor = defaultFontColor
	}
	return s
}

// ScaledFontSize returns the font size used on a w×h canvas.
func ScaledFontSize(fontSize, w, h int) float64 {
	size := float64(fontSize)
	if w < h {
		size *= portraitScale
	}
	return size
}

// Positions returns the default anchor for a caption role: horizontally
// centred, subtitles low in the frame, titles near the top.
func Positions(kind Kind, style types.CaptionStyle, w, h int) (int, int) {
	ratio := 0.75
	if kind == KindTitle {
		ratio = 0.12
	}
	if style.PositionY > 0 && style.PositionY < 1 {
		ratio = style.PositionY
	}
	return w / 2, int(math.Round(float64(h) * ratio))
}

func BuildCaption(in CaptionInput) (Caption, error) {
	if in.Duration <= 0 {
		return Caption{}, errors.New("caption duration must be > 0")
	}
	style := WithDefaults(in.Style, in.Kind)
	fontColor, err := ParseHexColor(style.FontColor)
	if err != nil {
		return Caption{}, fmt.Errorf("font colour: %w", err)
	}
	rs := roleDefaults(in.Kind, fontColor)
	if p, ok := LookupPreset(style.Preset); ok {
		if p.Fill != "" {
			rs.fill = p.Fill
		}
		rs.outline = p.Outline
		rs.outlineWidth = p.OutlineWidth
		rs.back = p.Background
		rs.borderStyle = p.BorderStyle
		rs.shadow = p.Shadow
	}

	primary, err := assColor(rs.fill, "00")
	if err != nil {
		return Caption{}, err
	}
	outline, err := assColor(rs.outline, "00")
	if err != nil {
		return Caption{}, err
	}
	back, err := assColor(rs.back, backgroundAlpha)
	if err != nil {
		return Caption{}, err
	}

	name := in.TrackName
	if name == "" {
		name = SubtitleTrack
		if in.Kind == KindTitle {
			name = TitleTrack
		}
	}
	fontSize := ScaledFontSize(style.FontSize, in.Width, in.Height)
	anchorY := in.PosY + int(math.Round(fontSize))

	styleLine := fmt.Sprintf("Style: %s,%s,%d,%s,%s,%s,%s,%d,%d,0,0,100,100,0,0,%d,%s,%s,2,0,0,0,1",
		name,
		style.FontFamily,
		int(math.Round(fontSize)),
		primary, primary, outline, back,
		assBool(style.Bold), assBool(style.Italic),
		rs.borderStyle,
		fmtFloat(rs.outlineWidth), fmtFloat(rs.shadow),
	)
	dialogue := fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,{\\pos(%d,%d)}%s",
		assTime(in.Start), assTime(in.Start+in.Duration), name, in.PosX, anchorY, sanitizeASS(in.Text))

	return Caption{StyleName: name, StyleLine: styleLine, DialogueLine: dialogue}, nil
}

// Document assembles captions into a complete ASS script for a w×h canvas.
// Style lines shared by several captions are written once.
func Document(w, h int, captions []Caption) string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\nPlayResY: %d\n", w, h)
	b.WriteString("WrapStyle: 2\nScaledBorderAndShadow: yes\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	seen := make(map[string]bool, 2)
	for _, c := range captions {
		if seen[c.StyleName] {
			continue
		}
		seen[c.StyleName] = true
		b.WriteString(c.StyleLine)
		b.WriteString("\n")
	}
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range captions {
		b.WriteString(c.DialogueLine)
		b.WriteString("\n")
	}
	return b.String()
}

type ClipMarkupInput struct {
	Text     string
	Style    types.CaptionStyle
	Title    *types.TitleConfig
	Duration time.Duration
	Width    int
	Height   int
}

// RenderClipASS builds the subtitle document of one clip: the narration split
// into timed captions plus an optional title spanning the whole narration.
func RenderClipASS(in ClipMarkupInput) (string, error) {
	style := WithDefaults(in.Style, KindSubtitle)
	segs := SegmentText(in.Text, style.FontSize, in.Duration)
	if len(segs) == 0 {
		return "", errors.New("narration text produced no captions")
	}
	x, y := Positions(KindSubtitle, style, in.Width, in.Height)

	captions := make([]Caption, 0, len(segs)+1)
	for _, s := range segs {
		c, err := BuildCaption(CaptionInput{
			Text:      s.Text,
			Style:     style,
			Start:     s.Start,
			Duration:  s.End - s.Start,
			Kind:      KindSubtitle,
			PosX:      x,
			PosY:      y,
			TrackName: SubtitleTrack,
			Width:     in.Width,
			Height:    in.Height,
		})
		if err != nil {
			return "", err
		}
		captions = append(captions, c)
	}

	if in.Title != nil && strings.TrimSpace(in.Title.Text) != "" {
		ts := WithDefaults(in.Title.Style, KindTitle)
		tx, ty := Positions(KindTitle, ts, in.Width, in.Height)
		c, err := BuildCaption(CaptionInput{
			Text:      in.Title.Text,
			Style:     ts,
			Start:     0,
			Duration:  in.Duration,
			Kind:      KindTitle,
			PosX:      tx,
			PosY:      ty,
			TrackName: TitleTrack,
			Width:     in.Width,
			Height:    in.Height,
		})
		if err != nil {
			return "", fmt.Errorf("title: %w", err)
		}
		captions = append(captions, c)
	}
	return Document(in.Width, in.Height, captions), nil
}

// WriteDocument writes an ASS script, creating parent directories.
func WriteDocument(path, doc string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func assBool(v bool) int {
	if v {
		return -1
	}
	return 0
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
