package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"1" help:"Play in the terminal UI"`
	Console ConsoleCmd       `cmd:"" help:"Play from a line based console"`
	Show    ShowCmd          `cmd:"" help:"Print the standings of the saved game"`
	Reset   ResetCmd         `cmd:"" help:"Discard the saved game"`
	Serve   ServeCmd         `cmd:"" help:"Run the HTTP backend"`
	Hello   HelloCmd         `cmd:"" help:"Fetch the greeting from a running backend"`
	Watch   WatchCmd         `cmd:"" help:"Follow the game on a running backend"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("potgame"),
		kong.Description("Track antes, bets and payouts for a pot game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
