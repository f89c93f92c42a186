package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"loopmix/internal/render"
)

// Fingerprint identifies the on-disk version of an input file.
type Fingerprint struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

// buildInput is the canonical structure hashed for a build.
type buildInput struct {
	Description string        `json:"description"`
	Args        []string      `json:"args"`
	Inputs      []Fingerprint `json:"inputs"`
}

// Fingerprints stats every path in order.
func Fingerprints(paths []string) ([]Fingerprint, error) {
	out := make([]Fingerprint, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", p, err)
		}
		out = append(out, Fingerprint{Path: p, Size: info.Size(), ModTime: info.ModTime().UnixNano()})
	}
	return out, nil
}

// InputHash returns a deterministic hash of the graph description, the
// ffmpeg arguments and the input file fingerprints.
func InputHash(description string, inv render.Invocation, inputs []Fingerprint) string {
	return hashJSON(buildInput{
		Description: description,
		Args:        inv.Args,
		Inputs:      inputs,
	})
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
