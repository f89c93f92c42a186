package tui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputMode describes how progress output should be rendered.
type OutputMode int

const (
	// ModeTUI uses bubbletea for interactive progress rendering.
	ModeTUI OutputMode = iota
	// ModePlain writes one line per event.
	ModePlain
	// ModeJSON suppresses progress and writes a JSON result.
	ModeJSON
)

// DetectMode picks the output mode for out. Interactive rendering needs a
// terminal with a usable TERM.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress {
		return ModePlain
	}
	file, ok := out.(*os.File)
	if !ok {
		return ModePlain
	}
	fd := file.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ModePlain
	}
	if term := os.Getenv("TERM"); strings.EqualFold(term, "dumb") {
		return ModePlain
	}
	return ModeTUI
}
