package main

import (
	"os"

	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/console"
)

// ConsoleCmd runs the line based view
type ConsoleCmd struct {
	History string `type:"path" help:"File to keep command history in"`
}

func (c *ConsoleCmd) Run(g *Globals) error {
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

	sess := openSession(ctx, cfg, logger)
	return console.New(sess, os.Stdout, cfg.Currency, logger).Run(ctx, c.History)
}
