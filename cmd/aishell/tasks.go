package main

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/core"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/execution"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/tui"
)

func (a *app) tasksCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Review deferred commands",
		Long: `Open a terminal UI listing commands deferred with "d" at the
confirmation prompt. Approved commands run in the background immediately;
rejected ones are never run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTasks(cmd, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list finished and rejected commands")
	return cmd
}

// reviewHandlers connects the review UI to q. Approved tasks start at once;
// wait blocks until every started task has finished.
func (a *app) reviewHandlers(q *queue.Manager) (tui.Handlers, func()) {
	// Background runs must not write over the UI.
	executor := core.NewExecutor(a.shellTimeout(),
		core.WithConsole(nil, nil),
		core.WithExecutorLogger(a.logger.Named("exec")))
	taskExecutor := execution.NewTaskExecutor(q, executor, a.logger.Named("tasks"))

	var wg sync.WaitGroup
	handlers := tui.Handlers{
		Approve: func(taskID string) error {
			if err := q.ApproveTask(taskID); err != nil {
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := taskExecutor.ExecuteTask(context.Background(), taskID); err != nil {
					a.logger.Warn("deferred task failed", zap.String("task_id", taskID), zap.Error(err))
				}
			}()
			return nil
		},
		Reject: q.RejectTask,
		Reload: q.GetTask,
	}
	return handlers, wg.Wait
}

func (a *app) runTasks(cmd *cobra.Command, all bool) error {
	q := queue.NewQueue(a.queuePath(), "")

	tasks, err := q.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	var shown []*queue.Task
	for _, task := range tasks {
		if all || isOpen(task.Status) {
			shown = append(shown, task)
		}
	}

	handlers, wait := a.reviewHandlers(q)
	model := tui.NewModel(shown, handlers)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Waiting for approved commands to finish...")
	wait()
	return nil
}

func isOpen(status queue.TaskStatus) bool {
	switch status {
	case queue.TaskStatusPending, queue.TaskStatusApproved, queue.TaskStatusExecuting:
		return true
	}
	return false
}
