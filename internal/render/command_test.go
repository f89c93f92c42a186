package render

import (
	"path/filepath"
	"strings"
	"testing"

	"loopmix/internal/mix"
)

func indexOf(args []string, value string) int {
	for i, a := range args {
		if a == value {
			return i
		}
	}
	return -1
}

func TestPlanBuildsCommand(t *testing.T) {
	tl := newTestTimeline(t, 300, mix.EdgeFadeParams{FadeIn: 3, FadeOut: 10}, 3, 100, 90, 110)
	spec, err := Compose(Visual{Path: "/v/loop.mp4", Width: 1920, Height: 1080}, tl, "/out/mix.mp4", testEncoding())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	inv := Plan("/usr/bin/ffmpeg", spec, "/out")

	if inv.PartialPath != "/out/mix.partial.mp4" {
		t.Fatalf("partial path got %s", inv.PartialPath)
	}
	if inv.Args[len(inv.Args)-1] != inv.PartialPath {
		t.Fatalf("ffmpeg must write the partial path, got %s", inv.Args[len(inv.Args)-1])
	}
	loop := indexOf(inv.Args, "-stream_loop")
	if loop < 0 || inv.Args[loop+1] != "-1" || inv.Args[loop+3] != "/v/loop.mp4" {
		t.Fatalf("visual must be looped: %v", inv.Args)
	}
	if got := strings.Count(strings.Join(inv.Args, " "), " -i "); got != 4 {
		t.Fatalf("inputs got %d want 4", got)
	}
	if i := indexOf(inv.Args, "-t"); i < 0 || inv.Args[i+1] != "300" {
		t.Fatalf("missing -t 300: %v", inv.Args)
	}
	if i := indexOf(inv.Args, "-filter_complex"); i < 0 || inv.Args[i+1] != inv.Graph {
		t.Fatalf("graph must be passed inline: %v", inv.Args)
	}
	if i := indexOf(inv.Args, "-b:a"); i < 0 || inv.Args[i+1] != "192k" {
		t.Fatalf("missing audio bitrate: %v", inv.Args)
	}
	if inv.ScriptPath != "" {
		t.Fatalf("short graph should not use a script")
	}
}

func TestPlanUsesScriptForLongGraphs(t *testing.T) {
	durations := make([]float64, 200)
	for i := range durations {
		durations[i] = 30
	}
	tl := newTestTimeline(t, 3000, mix.EdgeFadeParams{}, 3, durations...)
	spec, err := Compose(Visual{Path: "/v/loop.mp4"}, tl, "/out/mix.mp4", testEncoding())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	inv := Plan("ffmpeg", spec, "/diag")
	if len(inv.Graph) <= FilterScriptThreshold {
		t.Fatalf("test graph too short: %d", len(inv.Graph))
	}
	if want := filepath.Join("/diag", FilterFile); inv.ScriptPath != want {
		t.Fatalf("script path got %s want %s", inv.ScriptPath, want)
	}
	if i := indexOf(inv.Args, "-filter_complex_script"); i < 0 || inv.Args[i+1] != inv.ScriptPath {
		t.Fatalf("missing -filter_complex_script: %v", inv.Args[:20])
	}
	if indexOf(inv.Args, "-filter_complex") >= 0 {
		t.Fatalf("inline graph must not be passed with a script")
	}
}

func TestPartialPath(t *testing.T) {
	if got := PartialPath("/a/b/out.mkv"); got != "/a/b/out.partial.mkv" {
		t.Fatalf("got %s", got)
	}
	if got := PartialPath("out"); got != "out.partial" {
		t.Fatalf("got %s", got)
	}
}

func TestCommandLineQuotes(t *testing.T) {
	inv := Invocation{Binary: "ffmpeg", Args: []string{"-i", "/music/it's here.mp3", "-t", "300"}}
	want := `ffmpeg -i '/music/it'\''s here.mp3' -t 300`
	if got := inv.CommandLine(); got != want {
		t.Fatalf("command line got %s want %s", got, want)
	}
}
