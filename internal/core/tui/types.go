package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
)

// ApproveResultMsg is sent when an approval has been handled
type ApproveResultMsg struct {
	TaskID string
	Err    error
}

// RejectResultMsg is sent when a rejection has been handled
type RejectResultMsg struct {
	TaskID string
	Err    error
}

// StatusCheckMsg asks the model to reload a task that is still running
type StatusCheckMsg struct {
	TaskID string
}

// Handlers connect the model to the queue. Nil handlers succeed without
// doing anything.
type Handlers struct {
	Approve func(taskID string) error
	Reject  func(taskID string) error
	Reload  func(taskID string) (*queue.Task, error)
}

// Model is the interface for the TUI model
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}
