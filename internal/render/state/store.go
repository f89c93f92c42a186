package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// BuildEntry tracks the inputs and outcome of the last build of one output.
type BuildEntry struct {
	InputHash  string    `json:"input_hash"`
	BuildID    string    `json:"build_id"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationS  float64   `json:"duration_s"`
	Segments   int       `json:"segments"`
}

// BuildState tracks builds across outputs for change detection.
type BuildState struct {
	Builds map[string]BuildEntry `json:"builds"`
}

// Load reads build state from the given path. A missing or corrupt file
// returns an empty state without error.
func Load(path string) (*BuildState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyState(), nil
	}

	var bs BuildState
	if err := json.Unmarshal(data, &bs); err != nil {
		return emptyState(), nil
	}

	if bs.Builds == nil {
		bs.Builds = map[string]BuildEntry{}
	}
	return &bs, nil
}

// Save writes the build state atomically to the given path.
func (bs *BuildState) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bs, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Record stores a successful build.
func (bs *BuildState) Record(output string, entry BuildEntry) {
	if bs.Builds == nil {
		bs.Builds = map[string]BuildEntry{}
	}
	bs.Builds[output] = entry
}

func emptyState() *BuildState {
	return &BuildState{
		Builds: map[string]BuildEntry{},
	}
}
