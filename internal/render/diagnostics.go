package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"loopmix/internal/mix"
)

const (
	GraphFile     = "graph.txt"
	FilterFile    = "filter_complex.txt"
	CommandFile   = "ffmpeg_command.txt"
	TracklistFile = "tracklist.json"
)

// Diagnostics lists the files written next to an output before transcoding.
type Diagnostics struct {
	Dir         string `json:"dir"`
	GraphPath   string `json:"graph"`
	FilterPath  string `json:"filter_complex"`
	CommandPath string `json:"ffmpeg_command"`
}

// WriteDiagnostics writes the human-readable graph description, the rendered
// filter graph and the exact ffmpeg command to dir.
func WriteDiagnostics(dir string, tl mix.Timeline, inv Invocation) (Diagnostics, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Diagnostics{}, fmt.Errorf("ensure diagnostics dir: %w", err)
	}
	d := Diagnostics{
		Dir:         dir,
		GraphPath:   filepath.Join(dir, GraphFile),
		FilterPath:  filepath.Join(dir, FilterFile),
		CommandPath: filepath.Join(dir, CommandFile),
	}
	files := []struct {
		path string
		body string
	}{
		{d.GraphPath, mix.Describe(tl)},
		{d.FilterPath, inv.Graph},
		{d.CommandPath, inv.CommandLine() + "\n"},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.body), 0o644); err != nil {
			return Diagnostics{}, fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
		}
	}
	return d, nil
}

// Tracklist is the post-build summary of what was rendered.
type Tracklist struct {
	BuildID     string           `json:"build_id"`
	CreatedAt   string           `json:"created_at"`
	Output      string           `json:"output"`
	Target      float64          `json:"target_s"`
	RawDuration float64          `json:"raw_duration_s"`
	Repeats     int              `json:"repeats"`
	Overlap     float64          `json:"overlap_s"`
	Curve       string           `json:"curve"`
	Clips       []TracklistClip  `json:"clips"`
	Schedule    []TracklistEntry `json:"schedule"`
}

// TracklistClip describes one playlist clip.
type TracklistClip struct {
	Position int     `json:"position"`
	Path     string  `json:"path"`
	Label    string  `json:"label"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Group    string  `json:"group,omitempty"`
	Duration float64 `json:"duration_s"`
}

// TracklistEntry is one audible clip instance on the final timeline.
type TracklistEntry struct {
	Start     float64 `json:"start_s"`
	Timestamp string  `json:"timestamp"`
	Position  int     `json:"position"`
	Repeat    int     `json:"repeat"`
	Label     string  `json:"label"`
}

// NewTracklist summarizes a rendered timeline under a fresh build id.
func NewTracklist(tl mix.Timeline, output string, now time.Time) Tracklist {
	prog := tl.Program
	t := Tracklist{
		BuildID:     uuid.NewString(),
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Output:      output,
		Target:      tl.Duration,
		RawDuration: prog.Duration,
		Repeats:     prog.Repeats,
		Overlap:     prog.Crossfade.Overlap,
		Curve:       string(prog.Crossfade.Curve),
	}
	for i := 0; i < prog.Clips && i < len(prog.Segments); i++ {
		c := prog.Segments[i].Clip
		t.Clips = append(t.Clips, TracklistClip{
			Position: c.Position,
			Path:     c.Path,
			Label:    c.Label(),
			Title:    c.Title,
			Artist:   c.Artist,
			Group:    c.Group,
			Duration: c.Duration,
		})
	}
	for _, seg := range prog.Segments[:tl.Audible] {
		t.Schedule = append(t.Schedule, TracklistEntry{
			Start:     seg.Start,
			Timestamp: Timestamp(seg.Start),
			Position:  seg.PlaylistPosition,
			Repeat:    seg.Repeat,
			Label:     seg.Clip.Label(),
		})
	}
	return t
}

// WriteTracklist writes t as indented JSON to dir/tracklist.json.
func WriteTracklist(dir string, t Tracklist) (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode tracklist: %w", err)
	}
	data = append(data, '\n')
	path := filepath.Join(dir, TracklistFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write tracklist: %w", err)
	}
	return path, nil
}

// Timestamp formats seconds as H:MM:SS or M:SS.
func Timestamp(secs float64) string {
	total := int(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
