package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/ai"
	"github.com/Lin-Jiong-HDU/aishell/internal/core"
	"github.com/Lin-Jiong-HDU/aishell/internal/storage"
)

// ErrUserExit is returned by ProcessInput when the user asks to leave.
var ErrUserExit = errors.New("user requested exit")

// Author is shown by :author.
const Author = "aishell by Lin Jiong (HDU) · https://github.com/Lin-Jiong-HDU/aishell"

// Runner executes a shell command line.
type Runner interface {
	Execute(ctx context.Context, line string) (*core.Result, error)
}

// Asker runs the model query path for a prompt.
type Asker interface {
	Process(ctx context.Context, req ai.Request, presenter core.Presenter) (*core.Answer, error)
}

// Route is the path an input line takes.
type Route int

const (
	RouteBuiltIn Route = iota
	RouteShell
	RouteAI
)

func (r Route) String() string {
	switch r {
	case RouteBuiltIn:
		return "builtin"
	case RouteShell:
		return "shell"
	default:
		return "ai"
	}
}

// Options wires a REPL to its collaborators.
type Options struct {
	Session  *storage.Session
	Runner   Runner
	Asker    Asker
	Resolver core.Resolver
	// Persist saves the credential and model after :setkey or :model.
	Persist  func(*storage.Session) error
	Input    LineReader
	Output   io.Writer
	Renderer *Renderer
	Styles   *Styles
	Logger   *zap.Logger
}

// REPL is the interactive loop. It owns the session and is the only code
// that changes it.
type REPL struct {
	session  *storage.Session
	runner   Runner
	asker    Asker
	resolver core.Resolver
	persist  func(*storage.Session) error
	in       LineReader
	out      io.Writer
	renderer *Renderer
	styles   Styles
	logger   *zap.Logger
}

// NewREPL creates a REPL from opts.
func NewREPL(opts Options) *REPL {
	r := &REPL{
		session:  opts.Session,
		runner:   opts.Runner,
		asker:    opts.Asker,
		resolver: opts.Resolver,
		persist:  opts.Persist,
		in:       opts.Input,
		out:      opts.Output,
		renderer: opts.Renderer,
		styles:   DefaultStyles(),
		logger:   opts.Logger,
	}
	if opts.Styles != nil {
		r.styles = *opts.Styles
	}
	if r.session == nil {
		r.session = storage.NewSession(nil)
	}
	if r.resolver == nil {
		r.resolver = core.PathResolver{}
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Session returns the session the REPL mutates.
func (r *REPL) Session() *storage.Session {
	return r.session
}

// Run reads and processes lines until exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	r.DisplayBanner()

	for {
		line, err := r.in.ReadLine("> ")
		if err != nil {
			fmt.Fprintln(r.out)
			if errors.Is(err, io.EOF) {
				r.logger.Info("input closed")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if err := r.ProcessInput(ctx, line); err != nil {
			if errors.Is(err, ErrUserExit) {
				return nil
			}
			return err
		}
	}
}

// Route decides which path input takes. A line whose first word resolves
// to an executable runs as a command, so a prose word that happens to name
// an installed program is run rather than asked.
func (r *REPL) Route(input string) Route {
	input = strings.TrimSpace(input)
	if isBuiltIn(input) {
		return RouteBuiltIn
	}
	if r.resolver.Resolve(core.FirstWord(input)) {
		return RouteShell
	}
	return RouteAI
}

func isBuiltIn(input string) bool {
	if strings.HasPrefix(input, ":") {
		return true
	}
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}

// ProcessInput handles one line. Only ErrUserExit ends the loop; every
// other failure is reported inline.
func (r *REPL) ProcessInput(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	route := r.Route(input)
	r.logger.Debug("routed input", zap.Stringer("route", route), zap.String("input", input))

	switch route {
	case RouteBuiltIn:
		return r.HandleCommand(ctx, input)
	case RouteShell:
		r.runShell(ctx, input)
	default:
		r.askAI(ctx, input, false)
	}
	return nil
}

// HandleCommand runs a built-in.
func (r *REPL) HandleCommand(ctx context.Context, input string) error {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "exit", "quit", ":exit", ":quit":
		fmt.Fprintln(r.out, r.styles.Muted.Render("👋 Bye."))
		return ErrUserExit

	case ":help":
		r.DisplayHelp()

	case ":showkey":
		if r.session.APIKey == "" {
			r.warn("No API key set. Use :setkey <key>.")
			return nil
		}
		fmt.Fprintf(r.out, "🔑 Current key: %s\n", storage.MaskKey(r.session.APIKey))

	case ":setkey":
		if rest == "" {
			r.warn("⚠️ No key provided.")
			return nil
		}
		r.session.APIKey = rest
		r.save("✅ API key updated.")

	case ":model":
		if rest == "" {
			fmt.Fprintf(r.out, "Model: %s\n", r.styles.Command.Render(r.session.Model))
			return nil
		}
		r.session.Model = rest
		r.save("✅ Model set to " + rest + ".")

	case ":author":
		fmt.Fprintln(r.out, Author)

	case ":ai":
		withContext := false
		if after, ok := cutReplyFlag(rest); ok {
			withContext = true
			rest = after
		}
		if rest == "" {
			r.warn("Usage: :ai <prompt>  or  :ai -reply + <prompt>")
			return nil
		}
		r.askAI(ctx, rest, withContext)

	case ":sh":
		if rest == "" {
			r.warn("Usage: :sh <command>")
			return nil
		}
		r.runShell(ctx, rest)

	case ":last":
		if r.session.LastOutput == "" {
			fmt.Fprintln(r.out, r.styles.Muted.Render("(no output yet)"))
			return nil
		}
		fmt.Fprintln(r.out, strings.TrimRight(r.session.LastOutput, "\n"))

	default:
		r.warn(fmt.Sprintf("Unknown command %s. Type :help for the list.", name))
	}
	return nil
}

// cutReplyFlag strips a leading "-reply +" from an :ai argument.
func cutReplyFlag(rest string) (string, bool) {
	after, ok := strings.CutPrefix(rest, "-reply +")
	if !ok {
		return rest, false
	}
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return rest, false
	}
	return strings.TrimSpace(after), true
}

func (r *REPL) save(done string) {
	if r.persist != nil {
		if err := r.persist(r.session); err != nil {
			r.logger.Warn("failed to persist settings", zap.Error(err))
			r.warn(fmt.Sprintf("⚠️ Changed for this session, but saving failed: %v", err))
			return
		}
	}
	fmt.Fprintln(r.out, r.styles.Success.Render(done))
}

func (r *REPL) runShell(ctx context.Context, line string) {
	result, err := r.runner.Execute(ctx, line)
	if err != nil {
		var spawnErr *core.SpawnError
		switch {
		case errors.As(err, &spawnErr):
			r.logger.Info("spawn failed", zap.String("command", line), zap.String("reason", spawnErr.Reason))
			fmt.Fprintln(r.out, r.styles.Error.Render("✗ "+describeSpawnError(spawnErr)))
			return
		case result == nil:
			fmt.Fprintln(r.out, r.styles.Error.Render("✗ "+err.Error()))
			return
		default:
			// Interrupted: keep whatever it printed.
			r.warn(err.Error())
		}
	}

	r.session.LastOutput = result.Output
	if result.Output != "" && !strings.HasSuffix(result.Output, "\n") {
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out, r.styles.ExitCode(result.ExitCode))
}

func describeSpawnError(err *core.SpawnError) string {
	switch err.Reason {
	case core.ReasonNotFound:
		return fmt.Sprintf("command not found: %s", core.FirstWord(err.Command))
	case core.ReasonParseFailed:
		return fmt.Sprintf("cannot parse %q: %v", err.Command, err.Err)
	default:
		return fmt.Sprintf("cannot run %q: %v", err.Command, err.Err)
	}
}

func (r *REPL) askAI(ctx context.Context, prompt string, withContext bool) {
	if withContext {
		prompt = ai.ContextPrompt(r.session.LastOutput, prompt)
	}
	req := ai.Request{
		Prompt: prompt,
		Model:  r.session.Model,
		APIKey: r.session.APIKey,
	}

	fmt.Fprintln(r.out, r.styles.Muted.Render("🧠 Thinking..."))
	answer, err := r.asker.Process(ctx, req, r)
	if answer != nil {
		r.session.LastOutput = answer.Reply.Text
	}
	if err != nil {
		var spawnErr *core.SpawnError
		if errors.As(err, &spawnErr) {
			fmt.Fprintln(r.out, r.styles.Error.Render("✗ "+describeSpawnError(spawnErr)))
			return
		}
		fmt.Fprintln(r.out, r.styles.Error.Render("✗ "+err.Error()))
	}
}

// ShowAnswer implements core.Presenter.
func (r *REPL) ShowAnswer(a *core.Answer) {
	tag := r.styles.AITag.Render("[AI]")
	if a.Reply.Model != "" {
		tag += " " + r.styles.Model.Render(a.Reply.Model)
	}
	fmt.Fprintln(r.out, tag)

	if a.Degraded {
		r.warn(a.Reply.Text)
		return
	}

	parsed := a.Parsed
	command := parsed.RunnableCommand()
	if command == "" && parsed.Explanation == "" {
		// The model ignored the reply format.
		fmt.Fprint(r.out, r.renderer.Render(a.Reply.Text))
		return
	}

	if command != "" {
		fmt.Fprintf(r.out, "Command: %s\n", r.styles.Command.Render(command))
	}
	if parsed.Explanation != "" {
		fmt.Fprint(r.out, r.renderer.Render(parsed.Explanation))
	}
	if command == "" {
		return
	}

	switch v := parsed.Verdict; {
	case !v.Present:
		fmt.Fprintln(r.out, r.styles.Muted.Render("Safe: (no verdict)"))
	case v.Safe:
		fmt.Fprintln(r.out, r.styles.Safe.Render("Safe: yes"))
	default:
		text := "Safe: no"
		if v.Reason != "" {
			text += " - " + v.Reason
		}
		fmt.Fprintln(r.out, r.styles.Unsafe.Render(text))
	}
}

// DisplayBanner prints the startup banner.
func (r *REPL) DisplayBanner() {
	fmt.Fprintln(r.out, r.styles.Banner.Render("🚀 aishell · shell commands and AI in one prompt"))
	fmt.Fprintln(r.out, r.styles.Muted.Render("Type :help for commands, exit to quit."))
}

// DisplayHelp prints the built-in commands.
func (r *REPL) DisplayHelp() {
	help := `
Built-in commands:
  :ai <prompt>            Ask the AI
  :ai -reply + <prompt>   Ask the AI, including the last output
  :sh <command>           Run a command even if it looks like prose
  :last                   Show the last output
  :showkey                Show the current API key (masked)
  :setkey <key>           Set and save a new API key
  :model [id]             Show or set the default model
  :author                 About aishell
  :help                   Show this help
  exit, quit              Leave

Any other line runs as a command if its first word is an installed
program, and is sent to the AI otherwise.
`
	fmt.Fprintln(r.out, help)
}

func (r *REPL) warn(msg string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render(msg))
}
