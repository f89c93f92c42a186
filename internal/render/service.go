package render

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"loopmix/internal/mix"
	"loopmix/internal/runner"
)

// Service runs planned ffmpeg invocations.
type Service struct {
	Runner  runner.Runner
	LogsDir string
	Logger  zerolog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Options controls a single transcode.
type Options struct {
	// Timeout bounds the whole run; zero means no limit.
	Timeout  time.Duration
	Reporter ProgressReporter
}

// Result captures the outcome of a transcode.
type Result struct {
	Output  string
	LogPath string
	Elapsed time.Duration
	Err     error
}

// ProgressReporter receives notifications while ffmpeg runs.
type ProgressReporter interface {
	Start(inv Invocation)
	Progress(done, total float64)
	Complete(result Result)
}

// NewService prepares a transcoder writing ffmpeg logs to logsDir.
func NewService(r runner.Runner, logsDir string, logger zerolog.Logger) *Service {
	if r == nil {
		r = runner.CmdRunner{}
	}
	return &Service{Runner: r, LogsDir: logsDir, Logger: logger}
}

// SetWriters configures optional stdout/stderr writers for progress messages.
func (s *Service) SetWriters(stdout, stderr io.Writer) {
	if s == nil {
		return
	}
	s.stdout = stdout
	s.stderr = stderr
}

// Transcode runs ffmpeg for inv. Output is written to inv.PartialPath and
// renamed to inv.Output only on success; on any failure the partial file is
// removed and a *mix.TranscodeError or *mix.TimeoutError is returned.
func (s *Service) Transcode(ctx context.Context, inv Invocation, opts Options) (Result, error) {
	if s == nil {
		return Result{}, errors.New("render service is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	result := Result{Output: inv.Output}
	start := time.Now()

	finish := func(err error) (Result, error) {
		result.Elapsed = time.Since(start)
		result.Err = err
		if opts.Reporter != nil {
			opts.Reporter.Complete(result)
		}
		return result, err
	}

	if err := os.MkdirAll(filepath.Dir(inv.PartialPath), 0o755); err != nil {
		return finish(&mix.TranscodeError{Output: inv.Output, Err: fmt.Errorf("ensure output directory: %w", err)})
	}

	logPath, logFile, err := s.openLog(inv.Output)
	if err != nil {
		return finish(&mix.TranscodeError{Output: inv.Output, Err: err})
	}
	defer logFile.Close()
	result.LogPath = logPath
	fmt.Fprintf(logFile, "$ %s\n\n", inv.CommandLine())

	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if opts.Reporter != nil {
		opts.Reporter.Start(inv)
	}
	s.printf("rendering %s (%s)\n", filepath.Base(inv.Output), mix.HumanDuration(inv.Duration))
	s.Logger.Info().
		Str("output", inv.Output).
		Float64("duration_s", inv.Duration).
		Int("args", len(inv.Args)).
		Bool("filter_script", inv.ScriptPath != "").
		Msg("transcode start")

	progress := &progressWriter{total: inv.Duration, reporter: opts.Reporter}
	runOpts := runner.RunOptions{
		Stdout: progress,
		Stderr: logFile,
	}
	if s.stderr != nil {
		runOpts.Stderr = io.MultiWriter(logFile, s.stderr)
	}

	_, runErr := s.Runner.Run(runCtx, inv.Binary, inv.Args, runOpts)
	progress.Flush()
	if runErr != nil {
		_ = os.Remove(inv.PartialPath)
		var failure error
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			failure = &mix.TimeoutError{Output: inv.Output, Timeout: opts.Timeout, Err: runErr}
		case ctx.Err() != nil:
			failure = &mix.TranscodeError{Output: inv.Output, LogPath: logPath, Err: ctx.Err()}
		default:
			failure = &mix.TranscodeError{Output: inv.Output, LogPath: logPath, Err: fmt.Errorf("ffmpeg failed: %w", runErr)}
		}
		s.Logger.Error().Err(failure).Str("log", logPath).Msg("transcode failed")
		return finish(failure)
	}

	if err := os.Rename(inv.PartialPath, inv.Output); err != nil {
		_ = os.Remove(inv.PartialPath)
		failure := &mix.TranscodeError{Output: inv.Output, LogPath: logPath, Err: fmt.Errorf("finalize output: %w", err)}
		s.Logger.Error().Err(failure).Msg("transcode failed")
		return finish(failure)
	}

	s.Logger.Info().Str("output", inv.Output).Dur("elapsed", time.Since(start)).Msg("transcode complete")
	return finish(nil)
}

func (s *Service) openLog(output string) (string, *os.File, error) {
	dir := s.LogsDir
	if dir == "" {
		dir = filepath.Dir(output)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("ensure logs dir: %w", err)
	}
	base := safeFileSlug(strings.TrimSuffix(filepath.Base(output), filepath.Ext(output)))
	if base == "" {
		base = "output"
	}
	logPath := filepath.Join(dir, "ffmpeg_"+base+".log")
	f, err := os.Create(logPath)
	if err != nil {
		return "", nil, fmt.Errorf("open log file: %w", err)
	}
	return logPath, f, nil
}

func (s *Service) printf(format string, args ...any) {
	if s == nil || s.stdout == nil {
		return
	}
	fmt.Fprintf(s.stdout, format, args...)
}

// progressWriter parses ffmpeg -progress key=value output.
type progressWriter struct {
	total    float64
	reporter ProgressReporter
	partial  []byte
	done     float64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.partial = append(w.partial, p...)
	for {
		idx := bytes.IndexByte(w.partial, '\n')
		if idx < 0 {
			break
		}
		w.handle(string(w.partial[:idx]))
		w.partial = w.partial[idx+1:]
	}
	return len(p), nil
}

func (w *progressWriter) Flush() {
	if len(w.partial) > 0 {
		w.handle(string(w.partial))
		w.partial = nil
	}
}

func (w *progressWriter) handle(line string) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	switch key {
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return
		}
		w.done = float64(us) / 1e6
		if w.total > 0 && w.done > w.total {
			w.done = w.total
		}
		if w.reporter != nil {
			w.reporter.Progress(w.done, w.total)
		}
	}
}

// ParseProgress reads a complete ffmpeg -progress stream and returns the last
// reported position in seconds.
func ParseProgress(r io.Reader, total float64) float64 {
	w := &progressWriter{total: total}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w.handle(sc.Text())
	}
	return w.done
}
