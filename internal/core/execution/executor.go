package execution

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/core"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
)

// Runner runs one command line.
type Runner interface {
	Execute(ctx context.Context, line string) (*core.Result, error)
}

// TaskExecutor runs approved tasks from the queue
type TaskExecutor struct {
	queue    *queue.Manager
	executor Runner
	logger   *zap.Logger
}

// NewTaskExecutor creates a new task executor
func NewTaskExecutor(q *queue.Manager, executor Runner, logger *zap.Logger) *TaskExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskExecutor{
		queue:    q,
		executor: executor,
		logger:   logger,
	}
}

// ExecuteTask runs a single approved task and records its result.
// Only bookkeeping failures are returned; a command that fails to start or
// exits non-zero marks the task failed.
func (e *TaskExecutor) ExecuteTask(ctx context.Context, taskID string) error {
	target, err := e.queue.GetTask(taskID)
	if err != nil {
		return err
	}

	if !target.CanTransitionTo(queue.TaskStatusExecuting) {
		return fmt.Errorf("task %s cannot be executed (current status: %s)",
			taskID, target.Status)
	}

	if err := e.queue.MarkExecuting(taskID); err != nil {
		return fmt.Errorf("failed to mark executing: %w", err)
	}

	result, err := e.executor.Execute(ctx, target.Command)

	queueResult := &queue.ExecutionResult{}
	if result != nil {
		queueResult.ExitCode = result.ExitCode
		queueResult.Output = result.Output
	}
	if err != nil {
		queueResult.Error = err.Error()
		// A command that never started has no exit status of its own.
		if queueResult.ExitCode == 0 {
			queueResult.ExitCode = 1
		}
	}

	e.logger.Info("task executed",
		zap.String("task_id", taskID),
		zap.String("command", target.Command),
		zap.Int("exit_code", queueResult.ExitCode),
		zap.String("error", queueResult.Error))

	if err := e.queue.SetTaskResult(taskID, queueResult); err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}

	return nil
}

// ExecuteAllApproved runs every approved task in queue order and returns the
// recorded results. Bookkeeping errors are joined; the remaining tasks still run.
func (e *TaskExecutor) ExecuteAllApproved(ctx context.Context) ([]*queue.ExecutionResult, error) {
	approved, err := e.queue.GetTasksByStatus(queue.TaskStatusApproved)
	if err != nil {
		return nil, err
	}

	var results []*queue.ExecutionResult
	var errs []error

	for _, task := range approved {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := e.ExecuteTask(ctx, task.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		updated, err := e.queue.GetTask(task.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if updated.Result != nil {
			results = append(results, updated.Result)
		}
	}

	return results, errors.Join(errs...)
}
