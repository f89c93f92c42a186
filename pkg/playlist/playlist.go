// Package playlist loads ordered clip lists from playlist files and
// directories of audio files.
package playlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Half directory names and their group labels.
const (
	FirstHalfDir  = "half_1"
	SecondHalfDir = "half_2"
	FirstGroup    = "A"
	SecondGroup   = "B"
)

// Entry is one clip reference in playback order.
type Entry struct {
	// Index is 1-based within Group, or within the whole playlist when
	// Group is empty.
	Index  int
	Path   string
	Title  string
	Artist string
	Group  string
}

// Label returns the group-qualified index, e.g. "A3" or "7".
func (e Entry) Label() string {
	return fmt.Sprintf("%s%d", e.Group, e.Index)
}

// Source selects where the playlist comes from. File and Dir are mutually
// exclusive.
type Source struct {
	File       string
	Dir        string
	Halves     bool
	Extensions []string
}

// Load resolves the source into ordered entries.
func Load(src Source) ([]Entry, error) {
	switch {
	case src.File != "" && src.Dir != "":
		return nil, errors.New("playlist file and dir are mutually exclusive")
	case src.File != "":
		return LoadFile(src.File)
	case src.Dir != "" && src.Halves:
		return ScanHalves(src.Dir, src.Extensions)
	case src.Dir != "":
		return ScanDir(src.Dir, src.Extensions, "")
	default:
		return nil, errors.New("no playlist source configured")
	}
}

type fileDoc struct {
	Clips []yaml.Node `yaml:"clips"`
}

type clipDoc struct {
	Path   string `yaml:"path"`
	Title  string `yaml:"title"`
	Artist string `yaml:"artist"`
	Group  string `yaml:"group"`
}

// LoadFile reads a YAML playlist. Each entry under clips is either a path
// string or a map with path, title, artist and group keys. Relative paths
// resolve against the playlist file's directory.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("playlist file is empty")
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(doc.Clips) == 0 {
		return nil, errors.New("no clips found")
	}

	base := filepath.Dir(path)
	var (
		entries []Entry
		errs    ValidationErrors
	)
	for i, node := range doc.Clips {
		line := i + 1
		var c clipDoc
		switch node.Kind {
		case yaml.ScalarNode:
			c.Path = node.Value
		case yaml.MappingNode:
			if err := node.Decode(&c); err != nil {
				errs = append(errs, ValidationError{Entry: line, Message: err.Error()})
				continue
			}
		default:
			errs = append(errs, ValidationError{Entry: line, Message: "must be a path or a map"})
			continue
		}

		c.Path = strings.TrimSpace(c.Path)
		if c.Path == "" {
			errs = append(errs, ValidationError{Entry: line, Field: "path", Message: "path is required"})
			continue
		}
		if !filepath.IsAbs(c.Path) {
			c.Path = filepath.Join(base, c.Path)
		}
		entries = append(entries, Entry{
			Path:   c.Path,
			Title:  strings.TrimSpace(c.Title),
			Artist: strings.TrimSpace(c.Artist),
			Group:  strings.TrimSpace(c.Group),
		})
	}

	if len(errs) > 0 {
		return entries, errs
	}
	numberEntries(entries)
	return entries, nil
}

// ScanDir lists audio files directly under dir, sorted by file name.
func ScanDir(dir string, extensions []string, group string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	allowed := extensionSet(extensions)
	var names []string
	for _, item := range items {
		if item.IsDir() || strings.HasPrefix(item.Name(), ".") {
			continue
		}
		if !allowed[strings.ToLower(filepath.Ext(item.Name()))] {
			continue
		}
		names = append(names, item.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no audio files found in %s", dir)
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{
			Index: i + 1,
			Path:  filepath.Join(dir, name),
			Group: group,
		}
	}
	return entries, nil
}

// ScanHalves reads half_1 then half_2 under dir, labelling them A and B.
// Indices restart at 1 within each half.
func ScanHalves(dir string, extensions []string) ([]Entry, error) {
	first, err := ScanDir(filepath.Join(dir, FirstHalfDir), extensions, FirstGroup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FirstHalfDir, err)
	}
	second, err := ScanDir(filepath.Join(dir, SecondHalfDir), extensions, SecondGroup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SecondHalfDir, err)
	}
	return append(first, second...), nil
}

func numberEntries(entries []Entry) {
	counts := map[string]int{}
	for i := range entries {
		counts[entries[i].Group]++
		entries[i].Index = counts[entries[i].Group]
	}
}

func extensionSet(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
