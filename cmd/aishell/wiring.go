package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/ai"
	"github.com/Lin-Jiong-HDU/aishell/internal/ai/openrouter"
	"github.com/Lin-Jiong-HDU/aishell/internal/core"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/queue"
	"github.com/Lin-Jiong-HDU/aishell/internal/core/security"
	"github.com/Lin-Jiong-HDU/aishell/internal/storage"
	"github.com/Lin-Jiong-HDU/aishell/internal/terminal"
)

const (
	historyFileName = "history"
	renderWidth     = 100
)

// openInput returns a line editor when attached to a terminal and a plain
// reader otherwise.
func (a *app) openInput(cmd *cobra.Command) terminal.LineReader {
	if cmd.InOrStdin() == os.Stdin && terminal.IsInteractive() {
		history := ""
		if a.cfg.REPL.History {
			history = filepath.Join(a.configDir, historyFileName)
		}
		return terminal.NewLinerReader(history)
	}
	return terminal.NewScannerReader(cmd.InOrStdin(), cmd.OutOrStdout())
}

func (a *app) queuePath() string {
	return filepath.Join(a.configDir, queue.FileName)
}

func (a *app) shellTimeout() time.Duration {
	return time.Duration(a.cfg.Shell.Timeout) * time.Second
}

func (a *app) newProvider() (ai.Provider, error) {
	baseURL := a.cfg.AI.BaseURL
	if baseURL == "" {
		baseURL = openrouter.BaseURLFor(a.cfg.AI.Provider)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("unknown AI provider %q: set ai.base_url in %s",
			a.cfg.AI.Provider, storage.ConfigPath(a.configDir))
	}

	return openrouter.NewClient(baseURL,
		openrouter.WithSystemPrompt(a.cfg.AI.SystemPrompt),
		openrouter.WithTimeout(time.Duration(a.cfg.AI.Timeout)*time.Second),
		openrouter.WithLogger(a.logger.Named("ai")),
	), nil
}

// buildREPL wires the executor, gate, engine and queue around session.
func (a *app) buildREPL(session *storage.Session, in terminal.LineReader, out, errOut io.Writer) (*terminal.REPL, error) {
	styles := terminal.DefaultStyles()

	renderer, err := terminal.NewRenderer(renderWidth)
	if err != nil {
		a.logger.Warn("markdown rendering disabled", zap.Error(err))
	}

	provider, err := a.newProvider()
	if err != nil {
		return nil, err
	}

	executor := core.NewExecutor(a.shellTimeout(),
		core.WithConsole(out, errOut),
		core.WithExecutorLogger(a.logger.Named("exec")))

	gate := core.NewGate(executor, terminal.NewPrompter(in, out, styles),
		core.WithDeferrer(queue.NewQueue(a.queuePath(), session.ID)),
		core.WithSecurityController(security.NewSecurityController(&a.cfg.Security)),
		core.WithReporter(terminal.StyledReporter(out, styles)),
		core.WithGateLogger(a.logger.Named("gate")))

	engine := core.NewEngine(provider, gate, a.logger.Named("engine"))
	persister := storage.NewPersister(a.configDir, a.cfg)

	return terminal.NewREPL(terminal.Options{
		Session:  session,
		Runner:   executor,
		Asker:    engine,
		Persist:  persister.Persist,
		Input:    in,
		Output:   out,
		Renderer: renderer,
		Styles:   &styles,
		Logger:   a.logger.Named("repl"),
	}), nil
}

// ensureAPIKey asks once for a key when none is configured and saves it.
// An empty answer skips; the key can be set later with :setkey.
func ensureAPIKey(session *storage.Session, in terminal.LineReader, out io.Writer, persist func(*storage.Session) error) error {
	if session.APIKey != "" {
		return nil
	}

	fmt.Fprintln(out, "No API key configured. Get one at https://openrouter.ai/keys")
	key, err := in.ReadLine("API key (empty to skip): ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Fprintln(out, "Skipped. Use :setkey <key> later.")
		return nil
	}

	session.APIKey = key
	if err := persist(session); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	fmt.Fprintln(out, "✅ API key saved.")
	return nil
}
