package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/ai"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/security"
)

// Decision is the user's answer to a confirmation prompt.
type Decision int

const (
	DecisionDecline Decision = iota
	DecisionApprove
	DecisionDefer
)

// Confirmer asks the user whether a proposed command may run.
type Confirmer interface {
	Confirm(command, reason string) (Decision, error)
}

// Deferrer files a command for later review and returns its task ID.
type Deferrer interface {
	Defer(command, reason string) (string, error)
}

// EventKind classifies what the gate did with a command.
type EventKind int

const (
	EventRan EventKind = iota
	EventDeclined
	EventDeferred
	EventRefused
)

// Event describes the outcome of one MaybeRun call.
type Event struct {
	Kind     EventKind
	Command  string
	Reason   string
	TaskID   string
	ExitCode int
}

// Gate decides whether a model-proposed command runs.
type Gate struct {
	executor   *Executor
	confirmer  Confirmer
	deferrer   Deferrer
	controller *security.SecurityController
	report     func(Event)
	logger     *zap.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithDeferrer enables deferring declined commands.
func WithDeferrer(d Deferrer) GateOption {
	return func(g *Gate) { g.deferrer = d }
}

// WithSecurityController adds the local policy checks.
func WithSecurityController(sc *security.SecurityController) GateOption {
	return func(g *Gate) { g.controller = sc }
}

// WithReporter sets the callback that receives gate events.
func WithReporter(report func(Event)) GateOption {
	return func(g *Gate) {
		if report != nil {
			g.report = report
		}
	}
}

// WithGateLogger attaches a logger.
func WithGateLogger(l *zap.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate that runs commands through executor and asks
// confirmer when confirmation is needed. A nil confirmer declines everything
// that needs confirmation.
func NewGate(executor *Executor, confirmer Confirmer, opts ...GateOption) *Gate {
	g := &Gate{
		executor:  executor,
		confirmer: confirmer,
		report:    PlainReporter(os.Stdout),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaybeRun runs command if the verdict and policy allow it, asking for
// confirmation first when they do not. It reports whether the command ran.
// A non-zero exit status still counts as ran.
func (g *Gate) MaybeRun(ctx context.Context, command string, verdict ai.Verdict) (bool, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return false, nil
	}

	needConfirm := !verdict.Safe
	reason := verdict.Reason

	if g.controller != nil {
		check := g.controller.CheckCommand(command)
		if !check.Allowed {
			g.logger.Info("gate refused command", zap.String("command", command), zap.String("reason", check.Reason))
			g.report(Event{Kind: EventRefused, Command: command, Reason: check.Reason})
			return false, nil
		}

		switch g.controller.Policy().CommandLevel {
		case security.ConfirmAlways:
			needConfirm = true
		case security.ConfirmDangerous:
			if check.RequiresAuth {
				needConfirm = true
				reason = joinReasons(reason, check.Reason)
			}
		}
	}

	if needConfirm {
		decision := g.ask(command, reason)
		g.logger.Info("gate decision",
			zap.String("command", command),
			zap.Int("decision", int(decision)))

		switch decision {
		case DecisionApprove:
		case DecisionDefer:
			if g.deferrer != nil {
				id, err := g.deferrer.Defer(command, reason)
				if err != nil {
					return false, fmt.Errorf("failed to defer command: %w", err)
				}
				g.report(Event{Kind: EventDeferred, Command: command, Reason: reason, TaskID: id})
				return false, nil
			}
			g.report(Event{Kind: EventDeclined, Command: command, Reason: reason})
			return false, nil
		default:
			g.report(Event{Kind: EventDeclined, Command: command, Reason: reason})
			return false, nil
		}
	}

	result, err := g.executor.Execute(ctx, command)
	if err != nil {
		return false, err
	}

	g.report(Event{Kind: EventRan, Command: command, ExitCode: result.ExitCode})
	return true, nil
}

// ask never fails: an unreadable answer declines.
func (g *Gate) ask(command, reason string) Decision {
	if g.confirmer == nil {
		return DecisionDecline
	}
	decision, err := g.confirmer.Confirm(command, reason)
	if err != nil {
		g.logger.Debug("confirmation unreadable", zap.Error(err))
		return DecisionDecline
	}
	return decision
}

func joinReasons(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}

// PlainReporter writes gate events to w without styling.
func PlainReporter(w io.Writer) func(Event) {
	return func(ev Event) {
		switch ev.Kind {
		case EventRan:
			fmt.Fprintf(w, "[exit code: %d]\n", ev.ExitCode)
		case EventDeclined:
			fmt.Fprintln(w, "Skipped.")
		case EventDeferred:
			fmt.Fprintf(w, "Deferred as task %s. Review with `aishell tasks`.\n", ev.TaskID)
		case EventRefused:
			fmt.Fprintf(w, "Refused: %s\n", ev.Reason)
		}
	}
}
