package render

import (
	"fmt"
	"strings"
)

// BuildFilterComplex renders the RenderSpec's program as an ffmpeg filter_complex.
// Every clip instance is gain-adjusted and converted to the program format,
// instances are chained pairwise with acrossfade, and the result is trimmed
// to the target and edge-faded. The visual is scaled to even dimensions.
func BuildFilterComplex(spec RenderSpec) string {
	tl := spec.Timeline
	prog := tl.Program
	format := prog.Format

	parts := make([]string, 0, 2*len(prog.Segments)+1)
	for _, seg := range prog.Segments {
		parts = append(parts, fmt.Sprintf(
			"[%d:a]volume=%s,aformat=sample_fmts=%s:sample_rates=%d:channel_layouts=%s[%s]",
			seg.PlaylistPosition+1,
			formatFloat(prog.Gain),
			format.SampleFmt, format.SampleRate, format.ChannelLayout,
			instanceLabel(seg.PlaylistPosition, seg.Repeat),
		))
	}

	previous := instanceLabel(0, 0)
	if len(prog.Segments) > 0 {
		first := prog.Segments[0]
		previous = instanceLabel(first.PlaylistPosition, first.Repeat)
	}
	for _, tr := range prog.Transitions {
		seg := prog.Segments[tr.To]
		label := fmt.Sprintf("xf%d", tr.Index)
		parts = append(parts, fmt.Sprintf(
			"[%s][%s]acrossfade=d=%s:c1=%s:c2=%s[%s]",
			previous, instanceLabel(seg.PlaylistPosition, seg.Repeat),
			formatFloat(tr.Overlap), tr.Curve, tr.Curve, label,
		))
		previous = label
	}

	final := []string{fmt.Sprintf("atrim=0:%s", formatFloat(tl.Duration))}
	if tl.FadeIn.Duration > 0 {
		final = append(final, fmt.Sprintf("afade=t=in:st=%s:d=%s",
			formatFloat(tl.FadeIn.Start), formatFloat(tl.FadeIn.Duration)))
	}
	if tl.FadeOut.Duration > 0 {
		final = append(final, fmt.Sprintf("afade=t=out:st=%s:d=%s",
			formatFloat(tl.FadeOut.Start), formatFloat(tl.FadeOut.Duration)))
	}
	parts = append(parts, fmt.Sprintf("[%s]%s[a]", previous, strings.Join(final, ",")))

	parts = append(parts, fmt.Sprintf("[0:v]%s,format=%s[v]", scaleFilter(spec.Visual), pixFmt(spec.Encoding)))
	return strings.Join(parts, ";")
}

func instanceLabel(position, repeat int) string {
	return fmt.Sprintf("a%d_r%d", position+1, repeat)
}

func scaleFilter(v Visual) string {
	if v.Width > 0 && v.Height > 0 {
		return fmt.Sprintf("scale=%d:%d", v.Width, v.Height)
	}
	return "scale=trunc(iw/2)*2:trunc(ih/2)*2"
}

func pixFmt(enc Encoding) string {
	if enc.PixFmt == "" {
		return "yuv420p"
	}
	return enc.PixFmt
}
