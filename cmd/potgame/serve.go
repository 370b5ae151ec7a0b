package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/server"
	"github.com/lox/potgame/internal/session"
	"github.com/lox/potgame/internal/store"
)

// ServeCmd runs the HTTP backend over the saved game
type ServeCmd struct {
	Addr     string `help:"Override the configured listen address, e.g. ':9000'"`
	JSONLogs bool   `help:"Write structured JSON logs"`
	Memory   bool   `help:"Keep the game in memory instead of the saved game file"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := shared.SetupServerLogger(cfg.Log.Level, c.JSONLogs)
	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	sessLogger, closeLog, err := shared.SetupFileLogger(cfg.Log.File, cfg.Level())
	if err != nil {
		return err
	}
	defer closeLog()

	var sess *session.Session
	if c.Memory {
		sess = session.New(ctx, store.NewMemory(), session.WithLogger(sessLogger))
	} else {
		sess = openSession(ctx, cfg, sessLogger)
	}
	srv := server.NewServer(sess, logger)

	logger.Info().
		Str("address", addr).
		Str("state_file", cfg.StateFile).
		Bool("memory", c.Memory).
		Str("version", version).
		Msg("Starting pot game backend")

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info().
			Str("address", addr).
			Int("watchers", srv.Watchers()).
			Int("round", sess.State().Round).
			Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
