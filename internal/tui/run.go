package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithWork starts a bubbletea program for model, runs workFn in a
// goroutine and blocks until both finish. A non-nil error from workFn is
// shown by the model and returned.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg)) error) error {
	p := tea.NewProgram(model, tea.WithOutput(out))

	workErr := make(chan error, 1)
	go func() {
		// Let bubbletea render the initial frame.
		time.Sleep(50 * time.Millisecond)

		err := workFn(p.Send)
		workErr <- err
		if err != nil {
			p.Send(ErrorMsg{Err: err})
			return
		}
		p.Send(WorkDoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(ProgressModel); ok && m.Err() == ErrInterrupted {
		return ErrInterrupted
	}
	return <-workErr
}
