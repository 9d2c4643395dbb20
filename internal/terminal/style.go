package terminal

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles groups the console styles used by the REPL.
type Styles struct {
	Banner   lipgloss.Style
	AITag    lipgloss.Style
	Model    lipgloss.Style
	Command  lipgloss.Style
	Safe     lipgloss.Style
	Unsafe   lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	ExitOK   lipgloss.Style
	ExitFail lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the REPL color scheme.
func DefaultStyles() Styles {
	return Styles{
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		AITag:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Model:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Command:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Safe:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Unsafe:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		ExitOK:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ExitFail: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// ExitCode renders the status line printed after a command.
func (s Styles) ExitCode(code int) string {
	text := fmt.Sprintf("[exit code: %d]", code)
	if code == 0 {
		return s.ExitOK.Render(text)
	}
	return s.ExitFail.Render(text)
}
