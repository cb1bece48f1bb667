package ffmpeg

import (
	"fmt"
	"strings"

	"github.com/forPelevin/mixcut/internal/types"
)

const (
	VideoOut = "vout"
	AudioOut = "aout"
)

// Stage is one named node of a filter graph.
type Stage struct {
	Inputs []string
	Filter string
	Output string
}

type Graph struct {
	Stages []Stage
}

func (g *Graph) add(in []string, filter, out string) string {
	g.Stages = append(g.Stages, Stage{Inputs: in, Filter: filter, Output: out})
	return out
}

// chain appends filters one after another, naming each intermediate output
// prefix_<n> and the last one last.
func (g *Graph) chain(in, prefix, last string, filters ...string) string {
	cur := in
	for i, f := range filters {
		out := fmt.Sprintf("%s_%d", prefix, i)
		if i == len(filters)-1 {
			out = last
		}
		cur = g.add([]string{cur}, f, out)
	}
	return cur
}

// String renders the graph in -filter_complex syntax.
func (g Graph) String() string {
	parts := make([]string, 0, len(g.Stages))
	for _, s := range g.Stages {
		var b strings.Builder
		for _, in := range s.Inputs {
			b.WriteString("[" + in + "]")
		}
		b.WriteString(s.Filter)
		b.WriteString("[" + s.Output + "]")
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ";")
}

// BuildSegmentGraph builds the filter graph of one segment. Input 0 is the
// source video, input 1 the narration. withOriginAudio mixes the source
// video's own audio under the narration.
func BuildSegmentGraph(seg types.SegmentDescriptor, withOriginAudio bool, fontsDir string) Graph {
	var g Graph
	start := fmtSeconds(seg.Start)
	dur := fmtSeconds(seg.Duration)

	video := []string{
		fmt.Sprintf("trim=start=%s:duration=%s", start, dur),
		"setpts=PTS-STARTPTS",
		fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease:eval=frame", seg.Width, seg.Height),
		fmt.Sprintf("pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2:color=black", seg.Width, seg.Height),
	}
	if seg.ASSPath != "" {
		sub := "subtitles=filename=" + escapeFilterValue(seg.ASSPath) + ":si=0"
		if fontsDir != "" {
			sub += ":fontsdir=" + escapeFilterValue(fontsDir)
		}
		video = append(video, sub)
	}
	g.chain("0:v", "v", VideoOut, video...)

	narration := []string{
		fmt.Sprintf("atrim=start=0:duration=%s", dur),
		"asetpts=PTS-STARTPTS",
		"volume=1.0",
	}
	if !withOriginAudio {
		g.chain("1:a", "n", AudioOut, narration...)
		return g
	}
	n := g.chain("1:a", "n", "narration", narration...)
	o := g.chain("0:a", "o", "origin",
		fmt.Sprintf("atrim=start=%s:duration=%s", start, dur),
		"asetpts=PTS-STARTPTS",
		"volume=1.0",
	)
	g.add([]string{o, n}, "amix=inputs=2:duration=longest", AudioOut)
	return g
}

// escapeFilterValue escapes a filter option value for use inside a filter
// graph description.
func escapeFilterValue(p string) string {
	r := strings.NewReplacer(
		`\`, `\\\\`,
		`:`, `\\:`,
		`'`, `\\\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
	return r.Replace(p)
}
