package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"loopmix/internal/mix"
	"loopmix/internal/runner"
)

type recordingProgress struct {
	started  bool
	last     float64
	complete *Result
}

func (r *recordingProgress) Start(Invocation)            { r.started = true }
func (r *recordingProgress) Progress(done, total float64) { r.last = done }
func (r *recordingProgress) Complete(res Result)          { r.complete = &res }

func plannedInvocation(t *testing.T, dir string) Invocation {
	t.Helper()
	tl := newTestTimeline(t, 300, mix.EdgeFadeParams{FadeIn: 3, FadeOut: 10}, 3, 100, 90, 110)
	spec, err := Compose(Visual{Path: "/v/loop.mp4"}, tl, filepath.Join(dir, "mix.mp4"), testEncoding())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return Plan("ffmpeg", spec, dir)
}

func TestTranscodeRenamesPartialOnSuccess(t *testing.T) {
	dir := t.TempDir()
	inv := plannedInvocation(t, dir)

	fake := runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("video"), 0o644); err != nil {
			return runner.RunResult{}, err
		}
		opts.Stdout.Write([]byte("out_time_us=150000000\nprogress=continue\nout_time_us=300000000\nprogress=end\n"))
		return runner.RunResult{}, nil
	})

	svc := NewService(fake, filepath.Join(dir, "logs"), zerolog.Nop())
	rep := &recordingProgress{}
	res, err := svc.Transcode(context.Background(), inv, Options{Reporter: rep})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if _, err := os.Stat(inv.Output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(inv.PartialPath); !os.IsNotExist(err) {
		t.Fatalf("partial file should be gone, stat err %v", err)
	}
	if !rep.started || rep.last != 300 || rep.complete == nil || rep.complete.Err != nil {
		t.Fatalf("reporter got %+v", rep)
	}
	logData, err := os.ReadFile(res.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.HasPrefix(string(logData), "$ ffmpeg ") {
		t.Fatalf("log should start with the command, got %q", string(logData[:20]))
	}
}

func TestTranscodeFailureRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	inv := plannedInvocation(t, dir)

	fake := runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
		_ = os.WriteFile(args[len(args)-1], []byte("half"), 0o644)
		opts.Stderr.Write([]byte("Error while filtering\n"))
		return runner.RunResult{}, errors.New("exit status 1")
	})

	svc := NewService(fake, filepath.Join(dir, "logs"), zerolog.Nop())
	_, err := svc.Transcode(context.Background(), inv, Options{})
	var tErr *mix.TranscodeError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if tErr.LogPath == "" {
		t.Fatalf("error should carry the log path")
	}
	for _, p := range []string{inv.PartialPath, inv.Output} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist after failure", p)
		}
	}
}

func TestTranscodeTimeout(t *testing.T) {
	dir := t.TempDir()
	inv := plannedInvocation(t, dir)

	fake := runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
		_ = os.WriteFile(args[len(args)-1], []byte("half"), 0o644)
		<-ctx.Done()
		return runner.RunResult{}, ctx.Err()
	})

	svc := NewService(fake, filepath.Join(dir, "logs"), zerolog.Nop())
	_, err := svc.Transcode(context.Background(), inv, Options{Timeout: 20 * time.Millisecond})
	var timeout *mix.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeout.Timeout != 20*time.Millisecond {
		t.Fatalf("timeout got %v", timeout.Timeout)
	}
	if _, err := os.Stat(inv.PartialPath); !os.IsNotExist(err) {
		t.Fatalf("partial file should be removed after timeout")
	}
}

func TestTranscodeCancelled(t *testing.T) {
	dir := t.TempDir()
	inv := plannedInvocation(t, dir)
	ctx, cancel := context.WithCancel(context.Background())

	fake := runner.Func(func(ctx context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
		cancel()
		<-ctx.Done()
		return runner.RunResult{}, ctx.Err()
	})

	svc := NewService(fake, filepath.Join(dir, "logs"), zerolog.Nop())
	_, err := svc.Transcode(ctx, inv, Options{Timeout: time.Hour})
	var tErr *mix.TranscodeError
	if !errors.As(err, &tErr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled TranscodeError, got %v", err)
	}
}

func TestParseProgress(t *testing.T) {
	stream := "frame=10\nout_time_ms=2500000\nprogress=continue\nout_time_us=bad\n"
	if got := ParseProgress(strings.NewReader(stream), 10); got != 2.5 {
		t.Fatalf("progress got %v want 2.5", got)
	}
	if got := ParseProgress(strings.NewReader("out_time_us=99000000\n"), 10); got != 10 {
		t.Fatalf("progress should clamp to total, got %v", got)
	}
}
