package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/potgame/internal/config"
	"github.com/lox/potgame/internal/session"
	"github.com/lox/potgame/internal/store"
)

// Globals are flags shared by every command
type Globals struct {
	Config    string `short:"c" default:"potgame.hcl" type:"path" help:"Path to the HCL config file"`
	LogLevel  string `help:"Override the configured log level (debug, info, warn, error)"`
	StateFile string `type:"path" help:"Override the configured saved game file"`
}

// load reads the config file and applies flag overrides
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", g.Config, err)
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.StateFile != "" {
		cfg.StateFile = g.StateFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession restores the saved game named by cfg
func openSession(ctx context.Context, cfg *config.Config, logger *log.Logger) *session.Session {
	st := store.NewFile(cfg.StateFile, logger)
	return session.New(ctx, st, session.WithLogger(logger))
}
