package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) askCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Ask the AI once and exit",
		Long: `Send one prompt to the model, show its answer and, if it proposes a
command, run it through the same confirmation as the interactive prompt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := a.openInput(cmd)
			defer in.Close()

			repl, err := a.buildREPL(a.newSession(), in, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			prompt := ":ai " + strings.Join(args, " ")
			return repl.HandleCommand(cmd.Context(), prompt)
		},
	}
}
