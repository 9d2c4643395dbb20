package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
)

const (
	statusCheckInterval = 500 * time.Millisecond
	maxCommandWidth     = 60
)

// model is the Bubble Tea model for reviewing deferred commands
type model struct {
	tasks       []*queue.Task
	cursor      int
	keys        keyMap
	help        help.Model
	handlers    Handlers
	showDetails bool
	lastErr     error
	width       int
	height      int
}

// NewModel creates a review model over a copy of tasks. The caller's slice
// and tasks are never modified.
func NewModel(tasks []*queue.Task, handlers Handlers) Model {
	return model{
		tasks:    append([]*queue.Task(nil), tasks...),
		keys:     defaultKeyMap(),
		help:     help.New(),
		handlers: handlers,
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ApproveResultMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		m.setStatus(msg.TaskID, queue.TaskStatusApproved)
		return m, m.scheduleCheck(msg.TaskID)

	case RejectResultMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		m.setStatus(msg.TaskID, queue.TaskStatusRejected)
		return m, nil

	case StatusCheckMsg:
		if m.handlers.Reload == nil {
			return m, nil
		}
		fresh, err := m.handlers.Reload(msg.TaskID)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		if i := m.indexOf(msg.TaskID); i >= 0 {
			m.tasks[i] = fresh
		}
		if fresh.Status == queue.TaskStatusApproved || fresh.Status == queue.TaskStatusExecuting {
			return m, m.scheduleCheck(msg.TaskID)
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(m.tasks) > 0 {
			m.cursor = len(m.tasks) - 1
		}
	case key.Matches(msg, m.keys.Approve):
		if task := m.selected(); task != nil && task.Status == queue.TaskStatusPending {
			return m, m.approve(task.ID)
		}
	case key.Matches(msg, m.keys.Reject):
		if task := m.selected(); task != nil && task.Status == queue.TaskStatusPending {
			return m, m.reject(task.ID)
		}
	case key.Matches(msg, m.keys.ApproveAll):
		return m, m.forPending(m.approve)
	case key.Matches(msg, m.keys.RejectAll):
		return m, m.forPending(m.reject)
	}

	return m, nil
}

func (m model) approve(taskID string) tea.Cmd {
	approve := m.handlers.Approve
	return func() tea.Msg {
		var err error
		if approve != nil {
			err = approve(taskID)
		}
		return ApproveResultMsg{TaskID: taskID, Err: err}
	}
}

func (m model) reject(taskID string) tea.Cmd {
	reject := m.handlers.Reject
	return func() tea.Msg {
		var err error
		if reject != nil {
			err = reject(taskID)
		}
		return RejectResultMsg{TaskID: taskID, Err: err}
	}
}

func (m model) forPending(action func(string) tea.Cmd) tea.Cmd {
	var cmds []tea.Cmd
	for _, task := range m.tasks {
		if task.Status == queue.TaskStatusPending {
			cmds = append(cmds, action(task.ID))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m model) scheduleCheck(taskID string) tea.Cmd {
	if m.handlers.Reload == nil {
		return nil
	}
	return tea.Tick(statusCheckInterval, func(time.Time) tea.Msg {
		return StatusCheckMsg{TaskID: taskID}
	})
}

// setStatus replaces the task with an updated copy.
func (m *model) setStatus(taskID string, status queue.TaskStatus) {
	if i := m.indexOf(taskID); i >= 0 {
		updated := *m.tasks[i]
		updated.Status = status
		m.tasks[i] = &updated
	}
}

func (m model) indexOf(taskID string) int {
	for i, task := range m.tasks {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

func (m model) selected() *queue.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

// View renders the UI
func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" aishell deferred commands ") + "\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(subtleStyle.Render("  No deferred commands.") + "\n")
	}

	session := ""
	for i, task := range m.tasks {
		if i == 0 || task.SessionID != session {
			session = task.SessionID
			b.WriteString(sessionStyle.Render("  session "+shortSession(session)) + "\n")
		}
		b.WriteString(m.renderTask(i, task))
	}

	if m.showDetails {
		if task := m.selected(); task != nil {
			b.WriteString("\n" + renderDetails(task))
		}
	}

	if m.lastErr != nil {
		b.WriteString("\n" + errorStyle.Render("  error: "+m.lastErr.Error()) + "\n")
	}

	footer := "\n" + m.help.View(m.keys) + "\n"

	if m.height > 0 {
		if pad := m.height - lipgloss.Height(b.String()) - lipgloss.Height(footer); pad > 0 {
			b.WriteString(strings.Repeat("\n", pad))
		}
	}

	return b.String() + footer
}

func (m model) renderTask(i int, task *queue.Task) string {
	cursor := "  "
	line := truncate(task.Command, maxCommandWidth)
	if i == m.cursor {
		cursor = "> "
		line = selectedStyle.Render(line)
	}
	s := fmt.Sprintf("  %s[%s] %s\n", cursor, statusIndicator(task.Status), line)
	if task.Reason != "" && task.Status == queue.TaskStatusPending {
		s += warningStyle.Render("       "+task.Reason) + "\n"
	}
	return s
}

func renderDetails(task *queue.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  id:      %s\n", task.ID)
	fmt.Fprintf(&b, "  command: %s\n", task.Command)
	fmt.Fprintf(&b, "  status:  %s\n", task.Status)
	fmt.Fprintf(&b, "  queued:  %s\n", task.CreatedAt.Format(time.DateTime))
	if task.Reason != "" {
		fmt.Fprintf(&b, "  reason:  %s\n", task.Reason)
	}
	if r := task.Result; r != nil {
		fmt.Fprintf(&b, "  exit:    %d\n", r.ExitCode)
		if r.Error != "" {
			fmt.Fprintf(&b, "  error:   %s\n", r.Error)
		}
		if out := strings.TrimSpace(r.Output); out != "" {
			b.WriteString("  output:\n")
			for _, line := range strings.Split(out, "\n") {
				b.WriteString("    " + line + "\n")
			}
		}
	}
	return detailStyle.Render(b.String())
}

func statusIndicator(status queue.TaskStatus) string {
	switch status {
	case queue.TaskStatusPending:
		return " "
	case queue.TaskStatusApproved:
		return successStyle.Render("✓")
	case queue.TaskStatusRejected:
		return errorStyle.Render("✗")
	case queue.TaskStatusExecuting:
		return warningStyle.Render("⋯")
	case queue.TaskStatusCompleted:
		return successStyle.Render("✓")
	case queue.TaskStatusFailed:
		return errorStyle.Render("!")
	default:
		return "?"
	}
}

// truncate collapses whitespace and shortens s to at most limit runes.
func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func shortSession(id string) string {
	if id == "" {
		return "(none)"
	}
	return truncate(id, 8+3)
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sessionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	detailStyle   = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)
