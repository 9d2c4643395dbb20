package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testTasks() []*queue.Task {
	return []*queue.Task{
		{ID: "1", SessionID: "s1", Command: "rm -rf build", Reason: "deletes files", Status: queue.TaskStatusPending},
		{ID: "2", SessionID: "s1", Command: "ls", Status: queue.TaskStatusPending},
		{ID: "3", SessionID: "s2", Command: "make install", Status: queue.TaskStatusCompleted},
	}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatal("Expected model type")
	}
	return nm, cmd
}

func TestNewModel(t *testing.T) {
	mdl := NewModel(testTasks(), Handlers{})

	m, ok := mdl.(model)
	if !ok {
		t.Fatal("Expected model type")
	}
	if len(m.tasks) != 3 {
		t.Errorf("Expected 3 tasks, got %d", len(m.tasks))
	}
	if m.cursor != 0 {
		t.Errorf("Expected cursor at 0, got %d", m.cursor)
	}
	if m.Init() == nil {
		t.Error("Expected command from Init to get window size")
	}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)

	m, _ = update(t, m, runeKey('k'))
	if m.cursor != 0 {
		t.Errorf("Cursor should stay at top, got %d", m.cursor)
	}

	m, _ = update(t, m, runeKey('j'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Errorf("Expected cursor at 2, got %d", m.cursor)
	}

	m, _ = update(t, m, runeKey('j'))
	if m.cursor != 2 {
		t.Errorf("Cursor should stay at bottom, got %d", m.cursor)
	}

	m, _ = update(t, m, runeKey('g'))
	if m.cursor != 0 {
		t.Errorf("Expected cursor at top, got %d", m.cursor)
	}

	m, _ = update(t, m, runeKey('G'))
	if m.cursor != 2 {
		t.Errorf("Expected cursor at bottom, got %d", m.cursor)
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)

	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, msg)
		if cmd == nil {
			t.Fatalf("Expected quit command for %s", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Expected QuitMsg for %s", msg.String())
		}
	}
}

func TestModel_Approve(t *testing.T) {
	var approved []string
	m := NewModel(testTasks(), Handlers{
		Approve: func(id string) error {
			approved = append(approved, id)
			return nil
		},
	}).(model)

	m, cmd := update(t, m, runeKey('a'))
	if cmd == nil {
		t.Fatal("Expected approve command")
	}
	msg := cmd()
	result, ok := msg.(ApproveResultMsg)
	if !ok || result.TaskID != "1" || result.Err != nil {
		t.Fatalf("Unexpected message %#v", msg)
	}
	if len(approved) != 1 || approved[0] != "1" {
		t.Errorf("Approve handler not called as expected: %v", approved)
	}

	m, cmd = update(t, m, result)
	if m.tasks[0].Status != queue.TaskStatusApproved {
		t.Errorf("Expected approved, got %s", m.tasks[0].Status)
	}
	if cmd != nil {
		t.Error("No status polling without a reload handler")
	}
}

func TestModel_DoesNotMutateCallerTasks(t *testing.T) {
	tasks := testTasks()
	first, second := tasks[0], tasks[1]
	m := NewModel(tasks, Handlers{
		Reload: func(id string) (*queue.Task, error) {
			return &queue.Task{ID: id, Status: queue.TaskStatusCompleted}, nil
		},
	}).(model)

	m, _ = update(t, m, ApproveResultMsg{TaskID: "1"})
	m, _ = update(t, m, RejectResultMsg{TaskID: "2"})
	update(t, m, StatusCheckMsg{TaskID: "1"})

	if tasks[0] != first || tasks[1] != second {
		t.Error("Caller's slice was modified")
	}
	if first.Status != queue.TaskStatusPending || second.Status != queue.TaskStatusPending {
		t.Error("Caller's task was modified")
	}
}

func TestModel_ApproveIgnoresFinishedTask(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)
	m.cursor = 2

	if _, cmd := update(t, m, runeKey('a')); cmd != nil {
		t.Error("Completed task must not be approved again")
	}
}

func TestModel_RejectError(t *testing.T) {
	m := NewModel(testTasks(), Handlers{
		Reject: func(string) error { return errors.New("queue is locked") },
	}).(model)

	m, cmd := update(t, m, runeKey('r'))
	m, _ = update(t, m, cmd())

	if m.tasks[0].Status != queue.TaskStatusPending {
		t.Errorf("Failed rejection must not change status, got %s", m.tasks[0].Status)
	}
	if !strings.Contains(m.View(), "queue is locked") {
		t.Error("Expected error in view")
	}
}

func TestModel_RejectAll(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)

	_, cmd := update(t, m, runeKey('R'))
	if cmd == nil {
		t.Fatal("Expected batch command for pending tasks")
	}

	m.tasks = []*queue.Task{{ID: "9", Status: queue.TaskStatusFailed}}
	if _, cmd := update(t, m, runeKey('A')); cmd != nil {
		t.Error("Expected nil command without pending tasks")
	}
}

func TestModel_StatusCheck(t *testing.T) {
	calls := 0
	m := NewModel(testTasks(), Handlers{
		Reload: func(id string) (*queue.Task, error) {
			calls++
			status := queue.TaskStatusExecuting
			if calls > 1 {
				status = queue.TaskStatusCompleted
			}
			return &queue.Task{ID: id, SessionID: "s1", Command: "ls", Status: status}, nil
		},
	}).(model)

	m, cmd := update(t, m, ApproveResultMsg{TaskID: "2"})
	if cmd == nil {
		t.Fatal("Expected status polling after approval")
	}

	m, cmd = update(t, m, StatusCheckMsg{TaskID: "2"})
	if m.tasks[1].Status != queue.TaskStatusExecuting {
		t.Errorf("Expected executing, got %s", m.tasks[1].Status)
	}
	if cmd == nil {
		t.Error("Expected another check while executing")
	}

	m, cmd = update(t, m, StatusCheckMsg{TaskID: "2"})
	if m.tasks[1].Status != queue.TaskStatusCompleted {
		t.Errorf("Expected completed, got %s", m.tasks[1].Status)
	}
	if cmd != nil {
		t.Error("Polling should stop once finished")
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)
	view := m.View()

	for _, want := range []string{"deferred commands", "rm -rf build", "deletes files", "session s1", "session s2", "approve"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "id:      1") {
		t.Error("Expected details of the selected task")
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	m := NewModel(nil, Handlers{}).(model)
	if !strings.Contains(m.View(), "No deferred commands") {
		t.Error("Expected empty state")
	}
	if _, cmd := update(t, m, runeKey('a')); cmd != nil {
		t.Error("Approve on empty list should do nothing")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(testTasks(), Handlers{}).(model)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	if m.width != 80 || m.height != 40 {
		t.Errorf("Unexpected size %dx%d", m.width, m.height)
	}
	if got := strings.Count(m.View(), "\n"); got < 35 {
		t.Errorf("Expected footer pushed to the bottom, view has %d lines", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Unexpected %q", got)
	}
	long := strings.Repeat("日本", 40)
	got := truncate(long, 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("Unexpected truncation %q", got)
	}
	if got := truncate("a\n  b", 10); got != "a b" {
		t.Errorf("Expected whitespace collapsed, got %q", got)
	}
}
