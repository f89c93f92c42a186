package probe

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"loopmix/internal/mix"
)

// Tags holds the ID3 labels used in the tracklist.
type Tags struct {
	Title  string
	Artist string
}

// ReadTags reads title and artist frames from an MP3 file. Other formats
// return empty tags.
func ReadTags(path string) (Tags, error) {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return Tags{}, nil
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Title", "Artist"}})
	if err != nil {
		return Tags{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	defer tag.Close()

	return Tags{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
	}, nil
}

// Apply fills labels the clip does not already carry.
func (t Tags) Apply(c mix.Clip) mix.Clip {
	if c.Title == "" {
		c.Title = t.Title
	}
	if c.Artist == "" {
		c.Artist = t.Artist
	}
	return c
}
