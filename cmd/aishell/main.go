package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/logging"
	"github.com/Lin-Jiong-HDU/aishell/internal/storage"
)

// app holds what every subcommand loads before it runs.
type app struct {
	configDir string
	verbose   bool
	model     string

	cfg    *storage.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "aishell",
		Short: "Shell commands and AI in one prompt",
		Long: `aishell - an interactive prompt that runs shell commands and asks an AI model.

A line whose first word is an installed program runs as a command.
Anything else is sent to the model, which may propose a command to run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: a.runREPL,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", "", "configuration directory (default ~/.aishell)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVarP(&a.model, "model", "m", "", "model for this run, overriding the config")

	rootCmd.AddCommand(a.askCommand())
	rootCmd.AddCommand(a.tasksCommand())
	rootCmd.AddCommand(a.runCommand())

	return rootCmd
}

// load reads the configuration and sets up logging.
func (a *app) load() error {
	if a.configDir == "" {
		dir, err := storage.GetConfigDir()
		if err != nil {
			return err
		}
		a.configDir = dir
	}

	cfg, err := storage.LoadConfig(a.configDir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(a.configDir, cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("config loaded",
		zap.String("dir", a.configDir),
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model),
		zap.String("command_level", string(cfg.Security.CommandLevel)))

	return nil
}

// newSession starts a session, applying the --model override.
func (a *app) newSession() *storage.Session {
	session := storage.NewSession(a.cfg)
	if a.model != "" {
		session.Model = a.model
	}
	return session
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
