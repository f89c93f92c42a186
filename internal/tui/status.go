package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"loopmix/internal/mix"
	"loopmix/internal/render"
)

// StatusWriter prints a spinning status line while a long step runs. It
// implements render.ProgressReporter so it can follow ffmpeg progress.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	done    float64
	total   float64
	start   time.Time
	stop    chan struct{}
	stopped bool
}

// NewStatusWriter starts a background spinner that redraws the status line
// on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:     w,
		start: time.Now(),
		stop:  make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update changes the message and restarts the elapsed timer.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	sw.message = msg
	sw.done, sw.total = 0, 0
	sw.start = time.Now()
	sw.mu.Unlock()
}

// Start implements render.ProgressReporter.
func (sw *StatusWriter) Start(inv render.Invocation) {
	sw.Update(fmt.Sprintf("rendering %s", mix.HumanDuration(inv.Duration)))
	sw.mu.Lock()
	sw.total = inv.Duration
	sw.mu.Unlock()
}

// Progress implements render.ProgressReporter.
func (sw *StatusWriter) Progress(done, total float64) {
	sw.mu.Lock()
	sw.done, sw.total = done, total
	sw.mu.Unlock()
}

// Complete implements render.ProgressReporter.
func (sw *StatusWriter) Complete(render.Result) {
	sw.Stop()
}

// Stop clears the status line and stops the spinner.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()
	close(sw.stop)
	fmt.Fprintf(sw.w, "\r\033[K")
}

func (sw *StatusWriter) loop() {
	tick := 0
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			sw.mu.Lock()
			line := sw.line(spinnerFrames[tick%len(spinnerFrames)])
			sw.mu.Unlock()
			tick++
			fmt.Fprintf(sw.w, "\r\033[K%s", line)
		}
	}
}

// line renders the status text; callers hold mu.
func (sw *StatusWriter) line(frame string) string {
	elapsed := formatElapsed(time.Since(sw.start))
	if sw.total > 0 {
		pct := 100 * sw.done / sw.total
		return fmt.Sprintf("%s %s %5.1f%% (%s)", frame, sw.message, pct, elapsed)
	}
	return fmt.Sprintf("%s %s (%s)", frame, sw.message, elapsed)
}

// formatElapsed formats a duration for display in the status line.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < 10*time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

var _ render.ProgressReporter = (*StatusWriter)(nil)
