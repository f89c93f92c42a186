package paths

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"loopmix/internal/config"
)

func TestApplyConfigRelative(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	cfg := config.Config{}
	cfg.Playlist.File = "lists/evening.yaml"
	cfg.Visual.File = "media/loop.mp4"
	cfg.Render.OutputDir = "out"

	applied := ApplyConfig(pp, cfg)

	if want := filepath.Join(root, "lists/evening.yaml"); applied.PlaylistFile != want {
		t.Fatalf("expected playlist path %s, got %s", want, applied.PlaylistFile)
	}
	if applied.ClipsDir != "" {
		t.Fatalf("expected clips dir cleared, got %s", applied.ClipsDir)
	}
	if want := filepath.Join(root, "media/loop.mp4"); applied.VisualFile != want {
		t.Fatalf("expected visual path %s, got %s", want, applied.VisualFile)
	}
	if want := filepath.Join(root, "out"); applied.OutputDir != want {
		t.Fatalf("expected output dir %s, got %s", want, applied.OutputDir)
	}
}

func TestApplyConfigAbsolute(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	clipsAbs := filepath.Join(t.TempDir(), "clips")
	cfg := config.Config{}
	cfg.Playlist.Dir = clipsAbs

	applied := ApplyConfig(pp, cfg)
	if applied.ClipsDir != clipsAbs {
		t.Fatalf("expected clips dir %s, got %s", clipsAbs, applied.ClipsDir)
	}
}

func TestOutputPath(t *testing.T) {
	pp := newProjectPaths("/proj")
	if got, want := pp.OutputPath("", time.Time{}), filepath.Join("/proj", "rendered", "output.mp4"); got != want {
		t.Fatalf("output path got %s want %s", got, want)
	}
	stamp := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	want := filepath.Join("/proj", "rendered", "output_20240506_070809", "mix.mp4")
	if got := pp.OutputPath("mix.mp4", stamp); got != want {
		t.Fatalf("stamped output path got %s want %s", got, want)
	}
}

func TestEnsureMetaDirs(t *testing.T) {
	pp := newProjectPaths(t.TempDir())
	if err := pp.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs: %v", err)
	}
	for _, dir := range []string{pp.MetaDir, pp.OutputDir, pp.LogsDir} {
		ok, err := DirExists(dir)
		if err != nil || !ok {
			t.Fatalf("expected %s to exist", dir)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := FileExists(file); !ok {
		t.Fatalf("expected file to exist")
	}
	if ok, _ := FileExists(dir); ok {
		t.Fatalf("directory should not count as file")
	}
	if ok, err := FileExists(filepath.Join(dir, "missing")); ok || err != nil {
		t.Fatalf("missing file got %v %v", ok, err)
	}
}
