package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const indexVersion = 1

// Index captures probed clip durations persisted to .loopmix/probe-cache.json.
type Index struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Entry keeps the probe result for one clip along with the file identity it
// was measured against.
type Entry struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
	Duration  float64   `json:"duration_s"`
	ProbedAt  time.Time `json:"probed_at"`
}

// Matches reports whether the entry was recorded for a file with the given
// size and modification time.
func (e Entry) Matches(info os.FileInfo) bool {
	return e.SizeBytes == info.Size() && e.ModTime.Equal(info.ModTime())
}

// Load reads the index from path, returning an empty structure when the file
// is missing.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newIndex(), nil
		}
		return nil, fmt.Errorf("read probe cache: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode probe cache: %w", err)
	}
	if idx.Version != indexVersion {
		return newIndex(), nil
	}

	idx.normalize()
	return &idx, nil
}

// Save writes the index to path, creating the containing directory if needed.
// The write is performed atomically.
func Save(path string, idx *Index) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}

	if idx == nil {
		idx = newIndex()
	}
	idx.normalize()

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode probe cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp probe cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace probe cache: %w", err)
	}
	return nil
}

// Get returns the entry for path when present.
func (idx *Index) Get(path string) (Entry, bool) {
	if idx == nil || idx.Entries == nil {
		return Entry{}, false
	}
	entry, ok := idx.Entries[path]
	return entry, ok
}

// Set stores an entry under its path.
func (idx *Index) Set(entry Entry) {
	if idx == nil {
		return
	}
	if idx.Entries == nil {
		idx.Entries = map[string]Entry{}
	}
	idx.Entries[entry.Path] = entry
}

// Delete removes the entry for path.
func (idx *Index) Delete(path string) {
	if idx == nil || idx.Entries == nil {
		return
	}
	delete(idx.Entries, path)
}

// PruneMissing drops entries whose files no longer exist and returns how many
// were removed.
func (idx *Index) PruneMissing() int {
	if idx == nil {
		return 0
	}
	pruned := 0
	for path := range idx.Entries {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			delete(idx.Entries, path)
			pruned++
		}
	}
	return pruned
}

func (idx *Index) normalize() {
	if idx.Version == 0 {
		idx.Version = indexVersion
	}
	if idx.Entries == nil {
		idx.Entries = map[string]Entry{}
	}
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: map[string]Entry{},
	}
}
