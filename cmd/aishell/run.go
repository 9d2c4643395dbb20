package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lin-Jiong-HDU/aishell/internal/core"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/execution"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
	"github.com/Lin-Jiong-HDU/aishell/internal/terminal"
)

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run all approved deferred commands",
		Long: `Run every deferred command that was approved but has not run yet,
in the order it was deferred.`,
		Args: cobra.NoArgs,
		RunE: a.runApprovedTasks,
	}
}

func (a *app) runApprovedTasks(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	styles := terminal.DefaultStyles()
	q := queue.NewQueue(a.queuePath(), "")

	approved, err := q.GetTasksByStatus(queue.TaskStatusApproved)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if len(approved) == 0 {
		fmt.Fprintln(out, "No approved commands to run.")
		fmt.Fprintln(out, styles.Muted.Render("Hint: review deferred commands with 'aishell tasks'."))
		return nil
	}

	fmt.Fprintf(out, "Running %d approved command(s)...\n", len(approved))

	executor := core.NewExecutor(a.shellTimeout(),
		core.WithConsole(out, cmd.ErrOrStderr()),
		core.WithExecutorLogger(a.logger.Named("exec")))
	taskExecutor := execution.NewTaskExecutor(q, executor, a.logger.Named("tasks"))

	_, runErr := taskExecutor.ExecuteAllApproved(cmd.Context())

	failed := 0
	for _, task := range approved {
		done, err := q.GetTask(task.ID)
		if err != nil {
			return err
		}
		switch done.Status {
		case queue.TaskStatusCompleted:
			fmt.Fprintf(out, "  %s [%s] %s\n", styles.Success.Render("✓"), done.ShortID(), done.Command)
		case queue.TaskStatusFailed:
			failed++
			fmt.Fprintf(out, "  %s [%s] %s %s\n", styles.Error.Render("✗"), done.ShortID(), done.Command,
				styles.ExitCode(done.Result.ExitCode))
			if done.Result.Error != "" {
				fmt.Fprintf(out, "    error: %s\n", done.Result.Error)
			}
		}
	}

	fmt.Fprintf(out, "\nDone: %d command(s)", len(approved))
	if failed > 0 {
		fmt.Fprintf(out, " (%d failed)", failed)
	}
	fmt.Fprintln(out)

	return runErr
}
