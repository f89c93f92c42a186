package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"loopmix/internal/mix"
)

func testModel() ProgressModel {
	return NewProbeModel([]mix.Clip{
		{Path: "/music/clips/01-intro.mp3"},
		{Path: "/music/clips/02-outro.mp3", Group: "A2"},
	})
}

func TestRowUpdateMsg(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(RowUpdateMsg{
		Key:    probeKey(0),
		Fields: map[string]string{"STATUS": StatusProbed, "DURATION": "1m40s"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[4] != StatusProbed {
		t.Errorf("expected STATUS=probed, got %q", m.rows[0].Fields[4])
	}
	if m.rows[0].Fields[3] != "1m40s" {
		t.Errorf("expected DURATION=1m40s, got %q", m.rows[0].Fields[3])
	}
	if m.rows[1].Fields[4] != StatusPending {
		t.Errorf("expected row 2 STATUS=pending, got %q", m.rows[1].Fields[4])
	}
}

func TestRowUpdateMsgUnknownKey(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(RowUpdateMsg{Key: "clip:99", Fields: map[string]string{"STATUS": StatusProbed}})
	m = updated.(ProgressModel)
	if m.rows[0].Fields[4] != StatusPending {
		t.Errorf("expected STATUS unchanged, got %q", m.rows[0].Fields[4])
	}
}

func TestWorkDoneAndErrorMsgs(t *testing.T) {
	m := testModel()
	updated, cmd := m.Update(WorkDoneMsg{})
	if !updated.(ProgressModel).Done() || cmd == nil {
		t.Errorf("WorkDoneMsg should finish and quit")
	}

	updated, cmd = m.Update(ErrorMsg{Err: errors.New("probe failed")})
	got := updated.(ProgressModel)
	if !got.Done() || got.Err() == nil || cmd == nil {
		t.Errorf("ErrorMsg should finish with error")
	}
	if !strings.Contains(got.View(), "probe failed") {
		t.Errorf("error view got %q", got.View())
	}
}

func TestCtrlCInterrupts(t *testing.T) {
	updated, cmd := testModel().Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := updated.(ProgressModel)
	if !m.Done() || cmd == nil {
		t.Fatalf("expected quit on ctrl+c")
	}
	if !errors.Is(m.Err(), ErrInterrupted) {
		t.Errorf("err got %v want ErrInterrupted", m.Err())
	}
}

func TestViewShowsRowsAndFooter(t *testing.T) {
	m := testModel()
	view := m.View()
	for _, want := range []string{"Probing 2 clips", "CLIP", "STATUS", "01-intro.mp3", "A2", "Probing 0/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	updated, _ := m.Update(WorkDoneMsg{})
	if strings.Contains(updated.(ProgressModel).View(), "Probing 0/2") {
		t.Errorf("footer should be hidden when done")
	}
}

func TestProgressCounts(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(RowUpdateMsg{Key: probeKey(1), Fields: map[string]string{"STATUS": StatusError}})
	updated, _ = updated.Update(RowUpdateMsg{Key: probeKey(0), Fields: map[string]string{"STATUS": StatusProbing}})
	processed, total := updated.(ProgressModel).progressCounts()
	if processed != 1 || total != 2 {
		t.Errorf("counts got %d/%d want 1/2", processed, total)
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := testModel()
	updated, cmd := m.Update(tickMsg{})
	if updated.(ProgressModel).tick != 1 || cmd == nil {
		t.Fatalf("tick should advance and reschedule")
	}
	updated, _ = updated.Update(WorkDoneMsg{})
	if _, cmd := updated.Update(tickMsg{}); cmd != nil {
		t.Errorf("expected no tick command after done")
	}
}

func TestProbeReporterSendsUpdates(t *testing.T) {
	var msgs []tea.Msg
	r := NewProbeReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })
	r.Start(1, mix.Clip{})
	r.Complete(1, mix.Clip{Duration: 65}, nil)
	r.Complete(0, mix.Clip{}, errors.New("bad"))

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	done := msgs[1].(RowUpdateMsg)
	if done.Key != probeKey(1) || done.Fields["DURATION"] != "1m05s" || done.Fields["STATUS"] != StatusProbed {
		t.Errorf("complete msg got %+v", done)
	}
	if msgs[2].(RowUpdateMsg).Fields["STATUS"] != StatusError {
		t.Errorf("error msg got %+v", msgs[2])
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineReporter(&buf)
	r.Complete(0, mix.Clip{Path: "a.mp3", Duration: 5}, nil)
	r.Complete(1, mix.Clip{Path: "b.mp3"}, errors.New("no audio stream"))
	out := buf.String()
	if !strings.Contains(out, "a.mp3 (5s)") || !strings.Contains(out, "b.mp3: no audio stream") {
		t.Errorf("output got %q", out)
	}
}

func TestTruncation(t *testing.T) {
	tests := []struct {
		fn    func(string, int) string
		input string
		max   int
		want  string
	}{
		{TruncateWithEllipsis, "a longer string here", 10, "a longe..."},
		{TruncateWithEllipsis, "abcd", 3, "abc"},
		{TruncateWithEllipsis, "hello", 0, ""},
		{TruncateLeft, "/music/clips/song.mp3", 11, "...song.mp3"},
		{TruncateLeft, "abcd", 3, "bcd"},
		{TruncateLeft, "short", 10, "short"},
		{TruncateLeft, "/musik/Überraschung/日本語.mp3", 10, "...語.mp3"},
		{TruncateLeft, "ééééé", 4, "...é"},
		{TruncateWithEllipsis, "Überraschung", 8, "Überr..."},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.input, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
		if got := tt.fn(tt.input, tt.max); !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) split a rune: %q", tt.input, tt.max, got)
		}
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	if NonEmptyOrDash("  ") != "-" || NonEmptyOrDash(" a ") != "a" {
		t.Errorf("NonEmptyOrDash mismatch")
	}
}

func TestDetectModeNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if DetectMode(&buf, false, false) != ModePlain {
		t.Errorf("buffer should be plain")
	}
	if DetectMode(&buf, false, true) != ModeJSON {
		t.Errorf("json flag should win")
	}
}

func TestStatusWriterLine(t *testing.T) {
	sw := &StatusWriter{message: "rendering 5m", total: 300, done: 150}
	line := sw.line("*")
	if !strings.Contains(line, "rendering 5m") || !strings.Contains(line, "50.0%") {
		t.Errorf("line got %q", line)
	}
}
