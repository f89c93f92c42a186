package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateEncoding(t *testing.T) {
	cfg := Default()
	cfg.ApplyDefaults()
	cfg.Video.CRF = 60
	cfg.Audio.BitrateKbps = -1

	results := cfg.validateEncoding()
	if len(results) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(results), results)
	}
}

func TestValidatePlaylistSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "playlist.yaml"), []byte("clips: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{Playlist: PlaylistConfig{File: "playlist.yaml", Halves: true}}
	results := cfg.validatePlaylistSource(dir)
	if len(results) != 1 || results[0].Level != "warning" {
		t.Fatalf("expected halves warning, got %v", results)
	}

	cfg.Playlist.File = "missing.yaml"
	results = cfg.validatePlaylistSource(dir)
	if len(results) != 1 || results[0].Level != "error" {
		t.Fatalf("expected missing file error, got %v", results)
	}
}

func TestValidatePlaylistSourceRequired(t *testing.T) {
	cfg := Config{}
	results := cfg.validatePlaylistSource(t.TempDir())
	if len(results) != 1 || results[0].Level != "error" {
		t.Fatalf("expected required source error, got %v", results)
	}
}

func TestValidateVisualExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loop.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Config{Visual: VisualConfig{File: "loop.mp4"}}
	if results := cfg.validateVisual(dir); len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}
