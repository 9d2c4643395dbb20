package main

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
	"github.com/Lin-Jiong-HDU/aishell/internal/storage"
)

func TestTasksCommand_Flags(t *testing.T) {
	cmd := newRootCommand()
	sub, _, err := cmd.Find([]string{"tasks"})
	require.NoError(t, err)
	assert.NotNil(t, sub.Flags().Lookup("all"))
}

func TestReviewHandlers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("echo is a cmd.exe builtin on windows")
	}
	dir := t.TempDir()
	a := &app{configDir: dir, cfg: &storage.Config{}, logger: zap.NewNop()}
	q := queue.NewQueue(a.queuePath(), "s")

	run, err := q.AddTask("echo reviewed", "")
	require.NoError(t, err)
	skip, err := q.AddTask("echo skipped", "")
	require.NoError(t, err)

	handlers, wait := a.reviewHandlers(q)
	require.NoError(t, handlers.Approve(run.ID))
	require.NoError(t, handlers.Reject(skip.ID))
	wait()

	got, err := handlers.Reload(run.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.TaskStatusCompleted, got.Status)
	assert.Equal(t, "reviewed\n", got.Result.Output)

	got, err = handlers.Reload(skip.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.TaskStatusRejected, got.Status)

	assert.Error(t, handlers.Approve(skip.ID), "a rejected task cannot be approved")
	assert.Equal(t, filepath.Join(dir, queue.FileName), a.queuePath())
}

func TestIsOpen(t *testing.T) {
	assert.True(t, isOpen(queue.TaskStatusPending))
	assert.True(t, isOpen(queue.TaskStatusExecuting))
	assert.False(t, isOpen(queue.TaskStatusCompleted))
	assert.False(t, isOpen(queue.TaskStatusRejected))
}
