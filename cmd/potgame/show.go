package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/console"
	"github.com/lox/potgame/internal/ledger"
	"github.com/lox/potgame/internal/pot"
)

// ShowCmd prints the saved game
type ShowCmd struct {
	Format string `short:"f" enum:"text,json,toml" default:"text" help:"Output format (text, json, toml)"`
}

func (c *ShowCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level())

	sess := openSession(context.Background(), cfg, logger)
	return writeReport(os.Stdout, sess.State(), cfg.Currency, c.Format)
}

func writeReport(w io.Writer, s pot.State, currency, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ledger.Report{
			Currency: currency,
			Summary:  ledger.Summarize(s),
			Players:  ledger.Standings(s),
		})
	case "toml":
		return ledger.EncodeTOML(w, s, currency)
	}

	if _, err := fmt.Fprint(w, console.Render(s, currency, console.DefaultStyles())); err != nil {
		return err
	}
	if !s.Started {
		return nil
	}
	sum := ledger.Summarize(s)
	leaders := ledger.Leaders(s)
	_, err := fmt.Fprintf(w, "\nLeader: %s (%s)  Mean balance: %.2f  Spread: %.2f\n",
		leaders[0].Name, ledger.FormatBalance(currency, leaders[0].Balance), sum.MeanBalance, sum.Spread)
	return err
}
