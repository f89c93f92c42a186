package mix

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Clip is one probed source audio unit.
type Clip struct {
	Path     string
	Duration float64
	Position int

	// Reporting labels; they never influence the timeline.
	Title  string
	Artist string
	Group  string
}

// Label returns a short human-readable name for the clip.
func (c Clip) Label() string {
	if title := strings.TrimSpace(c.Title); title != "" {
		if artist := strings.TrimSpace(c.Artist); artist != "" {
			return artist + " - " + title
		}
		return title
	}
	return filepath.Base(c.Path)
}

// Playlist is the ordered, non-empty sequence of clips making up one cycle.
type Playlist struct {
	clips []Clip
}

// NewPlaylist copies clips into a playlist, assigning positions by slice
// order.
func NewPlaylist(clips []Clip) (Playlist, error) {
	if len(clips) == 0 {
		return Playlist{}, &InvalidPlaylistError{Reason: "playlist is empty"}
	}
	out := make([]Clip, len(clips))
	for i, c := range clips {
		c.Position = i
		out[i] = c
	}
	return Playlist{clips: out}, nil
}

// Len returns the number of clips in one cycle.
func (p Playlist) Len() int { return len(p.clips) }

// Clip returns the clip at position i.
func (p Playlist) Clip(i int) Clip { return p.clips[i] }

// Clips returns a copy of the playlist's clips.
func (p Playlist) Clips() []Clip {
	return append([]Clip(nil), p.clips...)
}

// TotalDuration returns the sum of clip durations with no overlap removed.
func (p Playlist) TotalDuration() float64 {
	total := 0.0
	for _, c := range p.clips {
		total += c.Duration
	}
	return total
}

// roundSeconds snaps float noise from repeated additions to microseconds.
func roundSeconds(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// formatSeconds renders seconds with at most millisecond precision.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// FormatSeconds is the exported form used by renderers that must agree with
// the graph description byte for byte.
func FormatSeconds(v float64) string {
	return formatSeconds(v)
}
