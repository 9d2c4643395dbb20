package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/aishell/internal/storage"
)

func (a *app) runREPL(cmd *cobra.Command, args []string) error {
	in := a.openInput(cmd)
	defer in.Close()

	session := a.newSession()
	out := cmd.OutOrStdout()

	if err := ensureAPIKey(session, in, out, storage.NewPersister(a.configDir, a.cfg).Persist); err != nil {
		return err
	}

	repl, err := a.buildREPL(session, in, out, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.logger.Info("session started", zap.String("session_id", session.ID), zap.String("model", session.Model))
	defer a.logger.Info("session ended", zap.String("session_id", session.ID))

	return repl.Run(cmd.Context())
}
