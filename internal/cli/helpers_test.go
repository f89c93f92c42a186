package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"loopmix/internal/engine"
	"loopmix/internal/mix"
	"loopmix/internal/probe"
	"loopmix/internal/render"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

type fakeProber struct {
	durations map[string]float64
}

func (f fakeProber) Probe(_ context.Context, path string) (float64, error) {
	d, ok := f.durations[filepath.Base(path)]
	if !ok {
		return 0, &mix.ProbeError{Clip: path, Err: errors.New("no audio stream")}
	}
	return d, nil
}

func (f fakeProber) ProbeVisual(_ context.Context, path string) (probe.VisualInfo, error) {
	return probe.VisualInfo{Path: path, Width: 1920, Height: 1080, Duration: 10}, nil
}

type fakeTranscoder struct {
	calls *int
}

func (f fakeTranscoder) Transcode(_ context.Context, inv render.Invocation, _ render.Options) (render.Result, error) {
	*f.calls++
	if err := os.WriteFile(inv.Output, []byte("video"), 0o644); err != nil {
		return render.Result{}, err
	}
	return render.Result{Output: inv.Output}, nil
}

// useFakeBoundaries swaps ffmpeg/ffprobe for in-process fakes and returns
// a pointer to the transcode call count.
func useFakeBoundaries(t *testing.T) *int {
	t.Helper()
	calls := new(int)
	prev := boundaries
	boundaries = func(context.Context, *project) (engine.Prober, engine.Transcoder, string, error) {
		prober := fakeProber{durations: map[string]float64{"01.mp3": 100, "02.mp3": 90, "03.mp3": 110}}
		return prober, fakeTranscoder{calls: calls}, "ffmpeg", nil
	}
	t.Cleanup(func() { boundaries = prev })
	return calls
}

// newTestProject initializes a project with three clips and a visual.
func newTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := runCLI(t, "init", "--project", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	files := []string{"clips/01.mp3", "clips/02.mp3", "clips/03.mp3", "visual.mp4"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
