package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Executor handles command execution.
//
// Output is streamed to the console writers while it is produced and also
// captured so the caller can reuse it once the process has finished.
type Executor struct {
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
	logger  *zap.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithConsole sets where live output is forwarded. A nil writer discards.
func WithConsole(stdout, stderr io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.stdout = orDiscard(stdout)
		e.stderr = orDiscard(stderr)
	}
}

// WithExecutorLogger attaches a logger.
func WithExecutorLogger(l *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates a new executor. A zero timeout lets commands run to completion.
func NewExecutor(timeout time.Duration, opts ...ExecutorOption) *Executor {
	e := &Executor{
		timeout: timeout,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result represents command execution result
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Execute tokenizes line and runs it, returning the combined output.
// A non-zero exit status is reported in Result.ExitCode, not as an error.
// Failure to start the process yields a *SpawnError.
func (e *Executor) Execute(ctx context.Context, line string) (*Result, error) {
	inv, err := NewInvocation(line)
	if err != nil {
		e.logger.Info("spawn failed", zap.String("command", line), zap.Error(err))
		return nil, err
	}
	return e.run(ctx, inv)
}

// ExecuteArgs runs a pre-tokenized argument vector.
func (e *Executor) ExecuteArgs(ctx context.Context, argv []string) (*Result, error) {
	inv, err := InvocationFromArgs(argv)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, inv)
}

func (e *Executor) run(ctx context.Context, inv *Invocation) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	configureProcess(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, newSpawnError(inv.Line, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, newSpawnError(inv.Line, err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		spawnErr := newSpawnError(inv.Line, err)
		e.logger.Info("spawn failed",
			zap.String("command", inv.Line),
			zap.String("reason", spawnErr.Reason),
			zap.Error(err))
		return nil, spawnErr
	}
	stopForwarding := forwardInterrupts(cmd)
	defer stopForwarding()

	// Both pipes must be drained before Wait, otherwise a child that fills
	// one pipe while the other is unread blocks forever.
	var out capture
	var g errgroup.Group
	g.Go(func() error { return drain(stdout, e.stdout, &out) })
	g.Go(func() error { return drain(stderr, e.stderr, &out) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	result := &Result{
		Output:   out.String(),
		Duration: time.Since(started),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	inv.ExitCode = result.ExitCode

	if readErr != nil {
		return nil, fmt.Errorf("failed to read output of %q: %w", inv.Line, readErr)
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("command %q interrupted: %w", inv.Line, ctx.Err())
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("failed to wait for %q: %w", inv.Line, waitErr)
	}

	e.logger.Debug("command finished",
		zap.Strings("argv", inv.Argv),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration),
		zap.Int("output_bytes", len(result.Output)))

	return result, nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
