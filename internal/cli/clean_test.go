package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loopmix/internal/cache"
)

func TestCleanPartials(t *testing.T) {
	dir := newTestProject(t)
	partial := filepath.Join(dir, "rendered", "output_20260101_000000", "output.partial.mp4")
	keep := filepath.Join(dir, "rendered", "output.mp4")
	for _, p := range []string{partial, keep} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCLI(t, "clean", "partials", "--project", dir, "--dry-run")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "would remove") {
		t.Errorf("dry run output %q", out)
	}
	if _, err := os.Stat(partial); err != nil {
		t.Fatalf("dry run removed file")
	}

	if _, err := runCLI(t, "clean", "partials", "--project", dir); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Errorf("partial output should be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("finished output should be kept: %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		12:          "12 B",
		2048:        "2.0 KiB",
		5 << 20:     "5.0 MiB",
		3 << 30 / 2: "1.5 GiB",
	}
	for in, want := range tests {
		if got := formatSize(in); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanCachePrunesMissingClips(t *testing.T) {
	dir := newTestProject(t)
	kept := filepath.Join(dir, "clips", "01.mp3")
	idx := &cache.Index{Version: 1, Entries: map[string]cache.Entry{}}
	idx.Set(cache.Entry{Path: kept, Duration: 100})
	idx.Set(cache.Entry{Path: filepath.Join(dir, "clips", "gone.mp3"), Duration: 5})
	cachePath := filepath.Join(dir, ".loopmix", "probe-cache.json")
	if err := cache.Save(cachePath, idx); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "clean", "cache", "--project", dir)
	if err != nil {
		t.Fatalf("clean cache: %v", err)
	}
	if !strings.Contains(out, "1 cache records pruned") {
		t.Errorf("output got %q", out)
	}
	loaded, err := cache.Load(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries) != 1 {
		t.Fatalf("entries got %d want 1", len(loaded.Entries))
	}
	if _, ok := loaded.Get(kept); !ok {
		t.Errorf("existing clip should stay cached")
	}
}
