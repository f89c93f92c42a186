package tui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle styles the table title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		StatusProbed: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"rendered":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		StatusProbing: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"rendering":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"skipped": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
