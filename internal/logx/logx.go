package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"loopmix/internal/paths"
)

// New creates a logger that writes JSON lines to a timestamped file inside
// the project's logs directory. When console is non-nil, entries are also
// rendered there in human-readable form. The returned closer should be
// closed when logging is no longer needed.
func New(p paths.ProjectPaths, console io.Writer) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if console != nil {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	}

	logger := zerolog.New(out).With().Timestamp().Str("project", filepath.Base(p.Root)).Logger()
	return logger, file, nil
}
