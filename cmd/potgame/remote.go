package main

import (
	"fmt"
	"os"

	"github.com/lox/potgame/cmd/potgame/shared"
	"github.com/lox/potgame/internal/console"
	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/server"
)

// HelloCmd fetches the backend greeting
type HelloCmd struct {
	URL string `default:"http://localhost:9000" help:"Backend URL"`
}

func (c *HelloCmd) Run(g *Globals) error {
	client, err := server.NewClient(c.URL)
	if err != nil {
		return err
	}
	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	msg, err := client.Hello(ctx)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// WatchCmd prints the table every time the game on a backend changes
type WatchCmd struct {
	URL string `default:"http://localhost:9000" help:"Backend URL"`
}

func (c *WatchCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	client, err := server.NewClient(c.URL)
	if err != nil {
		return err
	}
	ctx, stop := shared.SetupSignalHandler()
	defer stop()

	styles := console.DefaultStyles()
	return client.Watch(ctx, func(s pot.State) {
		fmt.Fprintln(os.Stdout, styles.Title.Render(" Pot Game "))
		fmt.Fprint(os.Stdout, console.Render(s, cfg.Currency, styles))
		fmt.Fprintln(os.Stdout)
	})
}
