package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/Lin-Jiong-HDU/aishell/internal/core"
)

// Prompter asks the user to confirm model-proposed commands.
type Prompter struct {
	in     LineReader
	out    io.Writer
	styles Styles
}

// NewPrompter creates a Prompter reading answers from in.
func NewPrompter(in LineReader, out io.Writer, styles Styles) *Prompter {
	return &Prompter{in: in, out: out, styles: styles}
}

// Confirm implements core.Confirmer. Only "y" or "yes" approves; "d" or
// "defer" queues the command for later review; anything else declines.
func (p *Prompter) Confirm(command, reason string) (core.Decision, error) {
	fmt.Fprintln(p.out, p.styles.Unsafe.Render("⚠️  This command needs your confirmation"))
	fmt.Fprintf(p.out, "   %s\n", p.styles.Command.Render(command))
	if reason != "" {
		fmt.Fprintf(p.out, "   reason: %s\n", reason)
	}

	answer, err := p.in.ReadLine("Run it? [y/N/d=defer] ")
	if err != nil {
		fmt.Fprintln(p.out)
		return core.DecisionDecline, err
	}
	return ParseDecision(answer), nil
}

// ParseDecision maps a typed answer to a decision.
func ParseDecision(answer string) core.Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return core.DecisionApprove
	case "d", "defer":
		return core.DecisionDefer
	default:
		return core.DecisionDecline
	}
}

// StyledReporter prints gate events with the REPL styles.
func StyledReporter(out io.Writer, styles Styles) func(core.Event) {
	return func(ev core.Event) {
		switch ev.Kind {
		case core.EventRan:
			fmt.Fprintln(out, styles.ExitCode(ev.ExitCode))
		case core.EventDeclined:
			fmt.Fprintln(out, styles.Muted.Render("⊘ Skipped."))
		case core.EventDeferred:
			fmt.Fprintln(out, styles.Warning.Render(
				fmt.Sprintf("⏸ Deferred as task %s. Review with `aishell tasks`.", ev.TaskID)))
		case core.EventRefused:
			fmt.Fprintln(out, styles.Error.Render("✗ Refused: "+ev.Reason))
		}
	}
}
