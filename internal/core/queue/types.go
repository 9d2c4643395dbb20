package queue

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a deferred command
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // Waiting for review
	TaskStatusApproved  TaskStatus = "approved"  // Approved, not yet run
	TaskStatusRejected  TaskStatus = "rejected"  // Rejected by user
	TaskStatusExecuting TaskStatus = "executing" // Currently running
	TaskStatusCompleted TaskStatus = "completed" // Ran and exited 0
	TaskStatusFailed    TaskStatus = "failed"    // Ran and failed, or could not start
)

// Task is a model-proposed command the user chose to review later.
type Task struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Command   string           `json:"command"`
	Reason    string           `json:"reason,omitempty"`
	Status    TaskStatus       `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Result    *ExecutionResult `json:"result,omitempty"`
}

// ExecutionResult holds the result of running a task
type ExecutionResult struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
}

// Succeeded reports whether the command started and exited 0.
func (r *ExecutionResult) Succeeded() bool {
	return r.ExitCode == 0 && r.Error == ""
}

// NewTask creates a pending task.
func NewTask(sessionID, command, reason string) *Task {
	now := time.Now()
	return &Task{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Command:   command,
		Reason:    reason,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var validTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:   {TaskStatusApproved, TaskStatusRejected},
	TaskStatusApproved:  {TaskStatusExecuting},
	TaskStatusExecuting: {TaskStatusCompleted, TaskStatusFailed},
}

// CanTransitionTo checks if a status transition is valid
func (t *Task) CanTransitionTo(newStatus TaskStatus) bool {
	for _, status := range validTransitions[t.Status] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// TransitionStatus updates the task status if the transition is valid
func (t *Task) TransitionStatus(newStatus TaskStatus) bool {
	if !t.CanTransitionTo(newStatus) {
		return false
	}
	t.Status = newStatus
	t.UpdatedAt = time.Now()
	return true
}

// ShortID is the prefix of the ID shown in listings.
func (t *Task) ShortID() string {
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}
