package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"loopmix/internal/runner"
)

// Detector resolves tool binaries and their versions.
type Detector struct {
	Runner runner.Runner
	// Overrides maps binary IDs (ffmpeg, ffprobe) to explicit paths.
	Overrides map[string]string
	LookPath  func(string) (string, error)
}

// Detect returns the status of each known tool.
func Detect(ctx context.Context, overrides map[string]string) ([]Status, error) {
	d := Detector{Runner: runner.CmdRunner{}, Overrides: overrides}
	return d.Detect(ctx)
}

func (d Detector) Detect(ctx context.Context) ([]Status, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, d.detectOne(ctx, def))
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Tool < statuses[j].Tool })
	return statuses, nil
}

// Lookup returns the resolved path of a binary, honoring overrides.
func (d Detector) Lookup(id string) (string, Source, error) {
	if path := d.Overrides[id]; path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", SourceOverride, fmt.Errorf("%s override %s: %w", id, path, err)
		}
		return path, SourceOverride, nil
	}
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(executableName(id))
	if err != nil {
		return "", SourceUnknown, fmt.Errorf("%s not found in PATH", id)
	}
	return path, SourceSystem, nil
}

func (d Detector) detectOne(ctx context.Context, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Paths: map[string]string{}}

	for _, bin := range def.Binaries {
		path, source, err := d.Lookup(bin.ID)
		if err != nil {
			status.Error = err.Error()
			status.Notes = append(status.Notes, installHints(bin.ID)...)
			return status
		}
		status.Paths[bin.ID] = path
		if bin.ID == def.Binaries[0].ID {
			status.Path = path
			status.Source = source
		}
	}

	version, err := d.readVersion(ctx, def, status.Path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
	}
	return status
}

// Require returns the resolved ffmpeg and ffprobe paths, or an error with
// install hints when either is missing.
func (d Detector) Require() (ffmpeg, ffprobe string, err error) {
	ffmpeg, _, err = d.Lookup("ffmpeg")
	if err != nil {
		return "", "", withHints("ffmpeg", err)
	}
	ffprobe, _, err = d.Lookup("ffprobe")
	if err != nil {
		return "", "", withHints("ffprobe", err)
	}
	return ffmpeg, ffprobe, nil
}

func withHints(binary string, err error) error {
	hints := installHints(binary)
	if len(hints) == 0 {
		return err
	}
	return fmt.Errorf("%w (%s)", err, hints[0])
}
