package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/rs/zerolog"

	"loopmix/internal/mix"
	"loopmix/internal/runner"
)

func fakeFFProbe(outputs map[string]string) FFProbe {
	r := runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
		path := args[len(args)-1]
		out, ok := outputs[path]
		if !ok {
			return runner.RunResult{Stderr: []byte(path + ": No such file or directory\n")}, errors.New("exit status 1")
		}
		return runner.RunResult{Stdout: []byte(out)}, nil
	})
	return New(r, "ffprobe", zerolog.Nop())
}

func audioJSON(duration string) string {
	return fmt.Sprintf(`{"format":{"format_name":"mp3","duration":%q},"streams":[{"codec_type":"audio","codec_name":"mp3"}]}`, duration)
}

func TestProbeParsesDuration(t *testing.T) {
	p := fakeFFProbe(map[string]string{"a.mp3": audioJSON("181.234")})
	got, err := p.Probe(context.Background(), "a.mp3")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != 181.234 {
		t.Fatalf("duration got %v want 181.234", got)
	}
}

func TestProbeFallsBackToStreamDuration(t *testing.T) {
	out := `{"format":{"duration":"N/A"},"streams":[{"codec_type":"audio","duration":"12.5"}]}`
	p := fakeFFProbe(map[string]string{"a.ogg": out})
	got, err := p.Probe(context.Background(), "a.ogg")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if got != 12.5 {
		t.Fatalf("duration got %v want 12.5", got)
	}
}

func TestProbeFailures(t *testing.T) {
	p := fakeFFProbe(map[string]string{
		"video.mp4": `{"format":{"duration":"10"},"streams":[{"codec_type":"video","width":640,"height":480}]}`,
		"zero.mp3":  audioJSON("0"),
		"junk.mp3":  "not json",
	})
	for _, path := range []string{"missing.mp3", "video.mp4", "zero.mp3", "junk.mp3"} {
		_, err := p.Probe(context.Background(), path)
		var probeErr *mix.ProbeError
		if !errors.As(err, &probeErr) {
			t.Fatalf("%s: expected ProbeError, got %v", path, err)
		}
		if probeErr.Clip != path {
			t.Fatalf("%s: error clip got %q", path, probeErr.Clip)
		}
	}
}

func TestProbeVisual(t *testing.T) {
	p := fakeFFProbe(map[string]string{
		"loop.mp4": `{"format":{"duration":"8"},"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1281,"height":721}]}`,
	})
	info, err := p.ProbeVisual(context.Background(), "loop.mp4")
	if err != nil {
		t.Fatalf("ProbeVisual: %v", err)
	}
	if info.Width != 1281 || info.Height != 721 || info.Duration != 8 {
		t.Fatalf("visual got %+v", info)
	}
	if _, err := p.ProbeVisual(context.Background(), "missing.mp4"); err == nil {
		t.Fatalf("expected error for missing visual")
	}
}

type recordingReporter struct {
	mu        sync.Mutex
	started   int
	completed int
	failed    int
}

func (r *recordingReporter) Start(int, mix.Clip) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recordingReporter) Complete(_ int, _ mix.Clip, err error) {
	r.mu.Lock()
	r.completed++
	if err != nil {
		r.failed++
	}
	r.mu.Unlock()
}

func TestProbeAllPreservesOrder(t *testing.T) {
	p := fakeFFProbe(map[string]string{
		"1.mp3": audioJSON("100"),
		"2.mp3": audioJSON("90"),
		"3.mp3": audioJSON("110"),
	})
	clips := []mix.Clip{{Path: "1.mp3"}, {Path: "2.mp3", Group: "B"}, {Path: "3.mp3"}}
	rep := &recordingReporter{}

	got, err := ProbeAll(context.Background(), p, clips, Options{Concurrency: 2, Reporter: rep})
	if err != nil {
		t.Fatalf("ProbeAll: %v", err)
	}
	want := []float64{100, 90, 110}
	for i, c := range got {
		if c.Path != clips[i].Path || c.Duration != want[i] {
			t.Fatalf("clip %d got %+v", i, c)
		}
	}
	if got[1].Group != "B" {
		t.Fatalf("group label lost: %+v", got[1])
	}
	if rep.started != 3 || rep.completed != 3 || rep.failed != 0 {
		t.Fatalf("reporter got %+v", rep)
	}
}

func TestProbeAllFailsOnAnyClip(t *testing.T) {
	p := fakeFFProbe(map[string]string{"1.mp3": audioJSON("100")})
	clips := []mix.Clip{{Path: "1.mp3"}, {Path: "gone.mp3"}}

	_, err := ProbeAll(context.Background(), p, clips, Options{Concurrency: 1})
	var probeErr *mix.ProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected ProbeError, got %v", err)
	}
	if probeErr.Clip != "gone.mp3" {
		t.Fatalf("error clip got %q", probeErr.Clip)
	}
}

func TestReadTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle("Night Drive")
	tag.SetArtist("The Loops")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if _, err := f.Write(make([]byte, 128)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	tags, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags: %v", err)
	}
	if tags.Title != "Night Drive" || tags.Artist != "The Loops" {
		t.Fatalf("tags got %+v", tags)
	}

	clip := tags.Apply(mix.Clip{Path: path, Title: "Kept"})
	if clip.Title != "Kept" || clip.Artist != "The Loops" {
		t.Fatalf("apply got %+v", clip)
	}
}

func TestReadTagsSkipsNonMP3(t *testing.T) {
	tags, err := ReadTags("clip.wav")
	if err != nil || tags != (Tags{}) {
		t.Fatalf("got %+v %v", tags, err)
	}
}
