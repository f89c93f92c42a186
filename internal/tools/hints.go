package tools

import (
	"fmt"
	"runtime"
)

// ffmpegPackages names the package that provides ffmpeg and ffprobe on each
// platform.
var ffmpegPackages = map[string][]string{
	"darwin":  {"brew install ffmpeg"},
	"linux":   {"sudo apt install ffmpeg", "sudo dnf install ffmpeg"},
	"windows": {"winget install Gyan.FFmpeg", "choco install ffmpeg"},
}

// installHints suggests how to get the given binary on the current platform.
func installHints(binary string) []string {
	return hintsFor(binary, runtime.GOOS)
}

func hintsFor(binary, goos string) []string {
	var lead string
	switch binary {
	case "ffmpeg":
		lead = "Install ffmpeg"
	case "ffprobe":
		lead = "ffprobe ships with ffmpeg; install ffmpeg"
	default:
		return nil
	}

	commands, ok := ffmpegPackages[goos]
	if !ok {
		return []string{lead + " using your platform's package manager"}
	}
	hints := make([]string, 0, len(commands))
	for i, command := range commands {
		if i == 0 {
			hints = append(hints, fmt.Sprintf("%s: %s", lead, command))
			continue
		}
		hints = append(hints, "or: "+command)
	}
	return hints
}
