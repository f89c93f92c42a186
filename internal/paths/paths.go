package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loopmix/internal/config"
)

// ProjectPaths captures canonical locations for a loopmix project.
type ProjectPaths struct {
	Root         string
	ConfigFile   string
	PlaylistFile string
	ClipsDir     string
	VisualFile   string
	MetaDir      string
	OutputDir    string
	LogsDir      string
	StateFile    string
	ProbeCache   string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".loopmix")
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "loopmix.yaml"),
		ClipsDir:   filepath.Join(root, config.DefaultClipsDir),
		VisualFile: filepath.Join(root, "visual.mp4"),
		MetaDir:    metaDir,
		OutputDir:  filepath.Join(root, "rendered"),
		LogsDir:    filepath.Join(root, "logs"),
		StateFile:  filepath.Join(metaDir, "state.json"),
		ProbeCache: filepath.Join(metaDir, "probe-cache.json"),
	}
}

// ApplyConfig points the playlist, visual and output locations at the
// configured values.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if file := strings.TrimSpace(cfg.Playlist.File); file != "" {
		pp.PlaylistFile = config.ResolvePath(pp.Root, file)
		pp.ClipsDir = ""
	} else if dir := strings.TrimSpace(cfg.Playlist.Dir); dir != "" {
		pp.ClipsDir = config.ResolvePath(pp.Root, dir)
	}
	if visual := strings.TrimSpace(cfg.Visual.File); visual != "" {
		pp.VisualFile = config.ResolvePath(pp.Root, visual)
	}
	if out := strings.TrimSpace(cfg.Render.OutputDir); out != "" {
		pp.OutputDir = config.ResolvePath(pp.Root, out)
	}
	return pp
}

// OutputPath returns where a build writes its artifact. A stamped build gets
// its own output_YYYYmmdd_HHMMSS folder.
func (p ProjectPaths) OutputPath(name string, stamp time.Time) string {
	if name == "" {
		name = "output.mp4"
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if stamp.IsZero() {
		return filepath.Join(p.OutputDir, name)
	}
	return filepath.Join(p.OutputDir, "output_"+stamp.Format("20060102_150405"), name)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the logs and output directories alongside the hidden
// .loopmix metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.OutputDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
