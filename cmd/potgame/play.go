package main

import (
	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/tui"
)

// PlayCmd runs the full screen view
type PlayCmd struct{}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	logger, closeLog, err := shared.SetupFileLogger(cfg.Log.File, cfg.Level())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	logger.Info("Starting TUI", "state_file", cfg.StateFile)
	sess := openSession(ctx, cfg, logger)
	return tui.Run(ctx, sess, cfg.Currency, logger)
}
