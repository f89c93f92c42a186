package tools

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"loopmix/internal/runner"
)

func (d Detector) readVersion(ctx context.Context, def ToolDefinition, path string) (string, error) {
	if len(def.Binaries) == 0 {
		return "", fmt.Errorf("tool %s has no binary definition", def.Name)
	}
	r := d.Runner
	if r == nil {
		r = runner.CmdRunner{}
	}

	res, err := r.Run(ctx, path, []string{def.Binaries[0].VersionSwitch}, runner.RunOptions{})
	if err != nil {
		return "", fmt.Errorf("%s version: %w", def.Name, err)
	}

	line := firstLine(strings.TrimSpace(string(res.Stdout)))
	return normalizeFFmpegVersion(line), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var ffmpegVersionRegex = regexp.MustCompile(`version n?([0-9]+(?:\.[0-9]+){0,2})`)

func normalizeFFmpegVersion(line string) string {
	if m := ffmpegVersionRegex.FindStringSubmatch(line); len(m) == 2 {
		return m[1]
	}
	return line
}

func meetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}

	vParts := numericParts(version)
	mParts := numericParts(minimum)
	if len(vParts) == 0 {
		// Git builds report a commit hash; assume they are recent.
		return true
	}
	for len(vParts) < len(mParts) {
		vParts = append(vParts, 0)
	}
	for len(mParts) < len(vParts) {
		mParts = append(mParts, 0)
	}
	for i := 0; i < len(vParts); i++ {
		if vParts[i] > mParts[i] {
			return true
		}
		if vParts[i] < mParts[i] {
			return false
		}
	}
	return true
}

func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}
