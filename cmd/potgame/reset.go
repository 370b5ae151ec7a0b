package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/session"
)

// ResetCmd discards the saved game
type ResetCmd struct {
	Yes bool `short:"y" help:"Confirm discarding the game"`
}

func (c *ResetCmd) Run(g *Globals) error {
	if !c.Yes {
		return errors.New("refusing to reset without --yes, all progress would be lost")
	}
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level())

	ctx := context.Background()
	sess := openSession(ctx, cfg, logger)
	if _, err := sess.Dispatch(ctx, session.Reset()); err != nil {
		return err
	}
	fmt.Println("Game reset")
	return nil
}
