package subtitles

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/forPelevin/mixcut/internal/types"
)

const (
	// baseWidth is the reference canvas width used to size caption lines.
	baseWidth  = 1080.0
	segmentGap = 200 * time.Millisecond
	// minWindow is the shortest caption window kept when gaps are reserved.
	minWindow = 10 * time.Millisecond
)

func MaxCharsPerLine(fontSize int) int {
	if fontSize <= 0 {
		fontSize = DefaultSubtitleFontSize
	}
	n := int(math.Floor(baseWidth / (float64(fontSize) * 0.6) / 2))
	if n < 1 {
		n = 1
	}
	return n
}

// NormalizeText applies NFC, unifies line endings and collapses horizontal
// whitespace runs to a single space.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.Join(strings.Fields(ln), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SegmentText splits narration into caption-sized chunks and lays them out
// over total. Windows are proportional to rune count after the 0.2s gaps are
// reserved, so they run slightly shorter than len/charsPerSecond and the last
// one always ends at total.
func SegmentText(text string, fontSize int, total time.Duration) []types.TextSegment {
	chunks := SplitCaptions(text, MaxCharsPerLine(fontSize))
	return allocate(chunks, total)
}

// SplitCaptions returns the caption chunks of text, none longer than limit
// runes.
func SplitCaptions(text string, limit int) []string {
	var out []string
	for _, sentence := range splitSentences(NormalizeText(text)) {
		if runeLen(sentence) <= limit {
			out = append(out, sentence)
			continue
		}
		for _, piece := range splitCommas(sentence) {
			if runeLen(piece) <= limit {
				out = append(out, piece)
				continue
			}
			out = append(out, packWords(piece, limit)...)
		}
	}
	return out
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '；':
		return true
	}
	return false
}

func isComma(r rune) bool {
	switch r {
	case '，', ',', '、':
		return true
	}
	return false
}

func splitSentences(s string) []string {
	return splitKeeping(s, isSentenceEnd, func(r rune) bool { return r == '\n' })
}

func splitCommas(s string) []string {
	return splitKeeping(s, isComma, func(rune) bool { return false })
}

// splitKeeping cuts s after every rune matching keep (the rune stays with its
// piece) and at every rune matching drop (the rune is discarded). Empty pieces
// are omitted.
func splitKeeping(s string, keep, drop func(rune) bool) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			out = append(out, p)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case drop(r):
			flush()
		case keep(r):
			cur.WriteRune(r)
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

func packWords(s string, limit int) []string {
	var out []string
	cur := ""
	for _, w := range strings.FieldsFunc(s, unicode.IsSpace) {
		if runeLen(w) > limit {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			out = append(out, hardWrap(w, limit)...)
			continue
		}
		if cur == "" {
			cur = w
			continue
		}
		if next := cur + " " + w; runeLen(next) <= limit {
			cur = next
			continue
		}
		out = append(out, cur)
		cur = w
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func hardWrap(w string, limit int) []string {
	rs := []rune(w)
	out := make([]string, 0, len(rs)/limit+1)
	for len(rs) > limit {
		out = append(out, string(rs[:limit]))
		rs = rs[limit:]
	}
	if len(rs) > 0 {
		out = append(out, string(rs))
	}
	return out
}

// allocate gives every chunk a window proportional to its rune count. The
// inter-caption gaps are carved out of total first, so the last window ends
// exactly at total; when total is too short for the gaps they are dropped.
func allocate(chunks []string, total time.Duration) []types.TextSegment {
	n := len(chunks)
	if n == 0 || total <= 0 {
		return nil
	}
	totalChars := 0
	for _, c := range chunks {
		totalChars += runeLen(c)
	}

	gap := segmentGap
	speaking := total - time.Duration(n-1)*gap
	if speaking < time.Duration(n)*minWindow {
		gap = 0
		speaking = total
	}

	out := make([]types.TextSegment, 0, n)
	var clock time.Duration
	cum := 0
	for i, c := range chunks {
		cum += runeLen(c)
		end := time.Duration(float64(speaking)*float64(cum)/float64(totalChars)) + time.Duration(i)*gap
		if i == n-1 || end > total {
			end = total
		}
		out = append(out, types.TextSegment{Text: c, Start: clock, End: end})
		clock = end + gap
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
