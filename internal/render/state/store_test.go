package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	bs, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs.Builds) != 0 {
		t.Errorf("expected empty builds, got %d", len(bs.Builds))
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	bs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bs.Builds) != 0 {
		t.Errorf("expected empty builds, got %d", len(bs.Builds))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	now := time.Now().Truncate(time.Second)
	bs := &BuildState{}
	bs.Record("/rendered/output.mp4", BuildEntry{
		InputHash:  "sha256:def456",
		BuildID:    "b-1",
		RenderedAt: now,
		DurationS:  10800,
		Segments:   120,
	})

	if err := bs.Save(path); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should be renamed away")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	entry, ok := loaded.Builds["/rendered/output.mp4"]
	if !ok {
		t.Fatalf("entry missing after round trip")
	}
	if entry.InputHash != "sha256:def456" || entry.Segments != 120 || !entry.RenderedAt.Equal(now) {
		t.Errorf("entry got %+v", entry)
	}
}
