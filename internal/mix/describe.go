package mix

import (
	"fmt"
	"strings"
)

// Describe renders a deterministic text description of the timeline. The
// output depends only on the timeline so repeated calls are byte identical.
func Describe(t Timeline) string {
	p := t.Program
	var b strings.Builder

	fmt.Fprintf(&b, "# loopmix program\n")
	fmt.Fprintf(&b, "clips: %d\n", p.Clips)
	fmt.Fprintf(&b, "repeats: %d\n", p.Repeats)
	fmt.Fprintf(&b, "segments: %d\n", len(p.Segments))
	fmt.Fprintf(&b, "transitions: %d\n", len(p.Transitions))
	fmt.Fprintf(&b, "overlap: %ss\n", formatSeconds(p.Crossfade.Overlap))
	fmt.Fprintf(&b, "curve: %s\n", p.Crossfade.Curve)
	fmt.Fprintf(&b, "gain: %s\n", formatSeconds(p.Gain))
	fmt.Fprintf(&b, "format: %s\n", p.Format)
	fmt.Fprintf(&b, "raw_duration: %ss\n", formatSeconds(p.Duration))
	fmt.Fprintf(&b, "target: %ss\n", formatSeconds(t.Duration))

	b.WriteString("\n## segments\n")
	for _, s := range p.Segments {
		fmt.Fprintf(&b, "%04d r%d c%d %s-%s %s\n",
			s.Position, s.Repeat, s.PlaylistPosition,
			formatSeconds(s.Start), formatSeconds(s.End), s.Clip.Path)
	}

	b.WriteString("\n## transitions\n")
	if len(p.Transitions) == 0 {
		b.WriteString("none\n")
	}
	for _, tr := range p.Transitions {
		fmt.Fprintf(&b, "%04d %d->%d %s-%s d=%s c=%s\n",
			tr.Index, tr.From, tr.To,
			formatSeconds(tr.Start), formatSeconds(tr.End),
			formatSeconds(tr.Overlap), tr.Curve)
	}

	b.WriteString("\n## trim\n")
	fmt.Fprintf(&b, "cut: 0-%s\n", formatSeconds(t.Duration))
	fmt.Fprintf(&b, "audible_segments: %d\n", t.Audible)
	fmt.Fprintf(&b, "fade_in: %s-%s\n", formatSeconds(t.FadeIn.Start), formatSeconds(t.FadeIn.End()))
	fmt.Fprintf(&b, "fade_out: %s-%s\n", formatSeconds(t.FadeOut.Start), formatSeconds(t.FadeOut.End()))

	if len(t.Warnings) > 0 {
		b.WriteString("\n## warnings\n")
		for _, w := range t.Warnings {
			b.WriteString(w)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
