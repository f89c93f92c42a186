package render

import (
	"testing"

	"loopmix/internal/mix"
)

func newTestTimeline(t *testing.T, target float64, edge mix.EdgeFadeParams, repeats int, durations ...float64) mix.Timeline {
	t.Helper()
	clips := make([]mix.Clip, len(durations))
	for i, d := range durations {
		clips[i] = mix.Clip{Path: "/music/" + string(rune('a'+i)) + ".mp3", Duration: d}
	}
	p, err := mix.NewPlaylist(clips)
	if err != nil {
		t.Fatalf("NewPlaylist: %v", err)
	}
	prog, err := mix.BuildProgram(p, repeats, mix.CrossfadeParams{Overlap: 5}, 1.75, mix.DefaultSampleFormat(), 0)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	tl, err := mix.Trim(prog, target, edge)
	if err != nil {
		t.Fatalf("Trim: %v", err)
	}
	return tl
}

func testEncoding() Encoding {
	return Encoding{
		VideoCodec:       "libx264",
		Preset:           "veryfast",
		CRF:              23,
		PixFmt:           "yuv420p",
		AudioCodec:       "aac",
		AudioBitrateKbps: 192,
	}
}
