package queue

import (
	"errors"
	"fmt"
	"sync"
)

// FileName is the queue file inside the config directory.
const FileName = "queue.json"

// ErrTaskNotFound is returned for an unknown task ID.
var ErrTaskNotFound = errors.New("task not found")

// Manager manages the deferred command queue.
//
// The file is the source of truth: every operation reloads it, so the REPL
// and `aishell tasks` can work on the same queue from separate processes.
type Manager struct {
	sessionID string
	store     *Store
	mu        sync.Mutex
}

// NewQueue creates a queue manager. Tasks added through it are tagged with
// sessionID.
func NewQueue(filePath string, sessionID string) *Manager {
	return &Manager{
		sessionID: sessionID,
		store:     NewStore(filePath),
	}
}

// AddTask adds a pending task to the queue
func (m *Manager) AddTask(command, reason string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	task := NewTask(m.sessionID, command, reason)
	tasks = append(tasks, task)

	if err := m.store.Save(tasks); err != nil {
		return nil, err
	}

	copied := *task
	return &copied, nil
}

// Defer queues command for later review and returns the task ID.
func (m *Manager) Defer(command, reason string) (string, error) {
	task, err := m.AddTask(command, reason)
	if err != nil {
		return "", fmt.Errorf("failed to queue command: %w", err)
	}
	return task.ID, nil
}

// GetAllTasks returns copies of all tasks.
func (m *Manager) GetAllTasks() ([]*Task, error) {
	return m.filter(func(*Task) bool { return true })
}

// GetPendingTasks returns all pending tasks
func (m *Manager) GetPendingTasks() ([]*Task, error) {
	return m.filter(func(t *Task) bool { return t.Status == TaskStatusPending })
}

// GetTasksByStatus returns tasks in the given status.
func (m *Manager) GetTasksByStatus(status TaskStatus) ([]*Task, error) {
	return m.filter(func(t *Task) bool { return t.Status == status })
}

// GetTask returns a copy of one task.
func (m *Manager) GetTask(taskID string) (*Task, error) {
	tasks, err := m.filter(func(t *Task) bool { return t.ID == taskID })
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return tasks[0], nil
}

func (m *Manager) filter(keep func(*Task) bool) ([]*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	var result []*Task
	for _, task := range tasks {
		if keep(task) {
			copied := *task
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ApproveTask approves a task for execution
func (m *Manager) ApproveTask(taskID string) error {
	return m.transition(taskID, TaskStatusApproved)
}

// RejectTask rejects a task
func (m *Manager) RejectTask(taskID string) error {
	return m.transition(taskID, TaskStatusRejected)
}

// MarkExecuting marks a task as executing
func (m *Manager) MarkExecuting(taskID string) error {
	return m.transition(taskID, TaskStatusExecuting)
}

// SetTaskResult records the execution result and completes or fails the task.
func (m *Manager) SetTaskResult(taskID string, result *ExecutionResult) error {
	target := TaskStatusFailed
	if result.Succeeded() {
		target = TaskStatusCompleted
	}

	return m.update(taskID, func(task *Task) error {
		if !task.TransitionStatus(target) {
			return fmt.Errorf("cannot transition task %s from %s to %s", taskID, task.Status, target)
		}
		task.Result = result
		return nil
	})
}

func (m *Manager) transition(taskID string, status TaskStatus) error {
	return m.update(taskID, func(task *Task) error {
		if !task.TransitionStatus(status) {
			return fmt.Errorf("cannot transition task %s from %s to %s", taskID, task.Status, status)
		}
		return nil
	})
}

// update loads the queue, applies fn to one task and saves.
func (m *Manager) update(taskID string, fn func(*Task) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks, err := m.store.Load()
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.ID == taskID {
			if err := fn(task); err != nil {
				return err
			}
			return m.store.Save(tasks)
		}
	}
	return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
}
