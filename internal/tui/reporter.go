package tui

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"loopmix/internal/mix"
	"loopmix/internal/probe"
)

// ProbeColumns are the columns of the probe progress table.
func ProbeColumns() []Column {
	return []Column{
		{Header: "#", Width: 4},
		{Header: "GROUP", Width: 5},
		{Header: "CLIP", Width: 48, Left: true},
		{Header: "DURATION", Width: 9},
		{Header: "STATUS", Width: 8},
	}
}

// NewProbeModel builds a progress table with one pending row per clip.
func NewProbeModel(clips []mix.Clip) ProgressModel {
	m := NewProgressModel(fmt.Sprintf("Probing %d clips", len(clips)), "Probing", ProbeColumns())
	for i, c := range clips {
		m.AddRow(probeKey(i), []string{
			strconv.Itoa(i + 1),
			NonEmptyOrDash(c.Group),
			c.Path,
			"-",
			StatusPending,
		})
	}
	return m
}

func probeKey(index int) string {
	return "clip:" + strconv.Itoa(index)
}

// ProbeReporter forwards probe events to a running ProgressModel.
type ProbeReporter struct {
	send func(tea.Msg)
}

// NewProbeReporter wraps a bubbletea send function.
func NewProbeReporter(send func(tea.Msg)) *ProbeReporter {
	return &ProbeReporter{send: send}
}

// Start implements probe.Reporter.
func (r *ProbeReporter) Start(index int, _ mix.Clip) {
	r.send(RowUpdateMsg{
		Key:    probeKey(index),
		Fields: map[string]string{"STATUS": StatusProbing},
	})
}

// Complete implements probe.Reporter.
func (r *ProbeReporter) Complete(index int, clip mix.Clip, err error) {
	fields := map[string]string{"STATUS": StatusProbed}
	if err != nil {
		fields["STATUS"] = StatusError
	} else {
		fields["DURATION"] = mix.HumanDuration(clip.Duration)
	}
	r.send(RowUpdateMsg{Key: probeKey(index), Fields: fields})
}

// LineReporter prints one line per finished probe. Safe for concurrent use.
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineReporter writes probe results to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

// Start implements probe.Reporter.
func (r *LineReporter) Start(int, mix.Clip) {}

// Complete implements probe.Reporter.
func (r *LineReporter) Complete(index int, clip mix.Clip, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		fmt.Fprintf(r.w, "%3d  %-7s %s: %v\n", index+1, StatusError, clip.Path, err)
		return
	}
	fmt.Fprintf(r.w, "%3d  %-7s %s (%s)\n", index+1, StatusProbed, clip.Path, mix.HumanDuration(clip.Duration))
}

var (
	_ probe.Reporter = (*ProbeReporter)(nil)
	_ probe.Reporter = (*LineReporter)(nil)
)
