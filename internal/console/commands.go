package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/session"
)

// Action is what a parsed line asks the console to do.
type Action int

const (
	ActionDispatch Action = iota // Send Intent to the session
	ActionShow
	ActionHistory
	ActionHelp
	ActionMax
	ActionQuit
)

// Parsed is the result of reading one command line.
type Parsed struct {
	Action Action
	Intent session.Intent
}

// Command describes a console command
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	parse       func(args []string, s pot.State) (Parsed, error)
}

var commands = []*Command{
	{
		Name:        "add",
		Aliases:     []string{"a"},
		Usage:       "add <name>",
		Description: "Add a player (before the game starts)",
		parse: func(args []string, _ pot.State) (Parsed, error) {
			name := strings.Join(args, " ")
			if strings.TrimSpace(name) == "" {
				return Parsed{}, fmt.Errorf("usage: add <name>")
			}
			return dispatch(session.AddPlayer(name)), nil
		},
	},
	{
		Name:        "remove",
		Aliases:     []string{"rm"},
		Usage:       "remove <seat>",
		Description: "Remove the player in a seat (before the game starts)",
		parse: func(args []string, _ pot.State) (Parsed, error) {
			if len(args) != 1 {
				return Parsed{}, fmt.Errorf("usage: remove <seat>")
			}
			seat, err := strconv.Atoi(args[0])
			if err != nil {
				return Parsed{}, fmt.Errorf("seat must be a number")
			}
			return dispatch(session.RemovePlayer(seat - 1)), nil
		},
	},
	{
		Name:        "start",
		Usage:       "start",
		Description: "Start the game, everyone antes",
		parse:       noArgs(session.StartGame()),
	},
	{
		Name:        "round",
		Aliases:     []string{"new", "n"},
		Usage:       "round",
		Description: "Start a new round, everyone antes",
		parse:       noArgs(session.NewRound()),
	},
	{
		Name:        "win",
		Aliases:     []string{"w"},
		Usage:       "win <bet|max>",
		Description: "Current player wins their bet",
		parse:       betCommand(session.Win),
	},
	{
		Name:        "lose",
		Aliases:     []string{"l"},
		Usage:       "lose <bet|max>",
		Description: "Current player loses their bet",
		parse:       betCommand(session.Lose),
	},
	{
		Name:        "max",
		Usage:       "max",
		Description: "Show the largest bet allowed",
		parse:       local(ActionMax),
	},
	{
		Name:        "undo",
		Aliases:     []string{"u"},
		Usage:       "undo",
		Description: "Undo the last action",
		parse:       noArgs(session.Undo()),
	},
	{
		Name:        "redo",
		Usage:       "redo",
		Description: "Redo the last undone action",
		parse:       noArgs(session.Redo()),
	},
	{
		Name:        "reset",
		Usage:       "reset",
		Description: "Discard the game and start over",
		parse:       noArgs(session.Reset()),
	},
	{
		Name:        "show",
		Aliases:     []string{"s", "players"},
		Usage:       "show",
		Description: "Show the table",
		parse:       local(ActionShow),
	},
	{
		Name:        "history",
		Aliases:     []string{"log"},
		Usage:       "history",
		Description: "Show what happened this session",
		parse:       local(ActionHistory),
	},
	{
		Name:        "help",
		Aliases:     []string{"?", "h"},
		Usage:       "help",
		Description: "Show available commands",
		parse:       local(ActionHelp),
	},
	{
		Name:        "quit",
		Aliases:     []string{"q", "exit"},
		Usage:       "quit",
		Description: "Leave (the game is kept)",
		parse:       local(ActionQuit),
	},
}

var commandIndex = func() map[string]*Command {
	idx := make(map[string]*Command)
	for _, c := range commands {
		idx[c.Name] = c
		for _, alias := range c.Aliases {
			idx[alias] = c
		}
	}
	return idx
}()

// Commands returns the console commands in help order.
func Commands() []*Command {
	return commands
}

// commandNames lists every name and alias, for completion.
func commandNames() []string {
	names := make([]string, 0, len(commandIndex))
	for name := range commandIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse reads one command line. s is the current snapshot, used to
// resolve "max" bets.
func Parse(line string, s pot.State) (Parsed, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Parsed{}, fmt.Errorf("empty command")
	}
	cmd, ok := commandIndex[strings.ToLower(fields[0])]
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command %q, try 'help'", fields[0])
	}
	return cmd.parse(fields[1:], s)
}

func dispatch(in session.Intent) Parsed {
	return Parsed{Action: ActionDispatch, Intent: in}
}

func local(a Action) func([]string, pot.State) (Parsed, error) {
	return func([]string, pot.State) (Parsed, error) {
		return Parsed{Action: a}, nil
	}
}

func noArgs(in session.Intent) func([]string, pot.State) (Parsed, error) {
	return func(args []string, _ pot.State) (Parsed, error) {
		if len(args) > 0 {
			return Parsed{}, fmt.Errorf("%s takes no arguments", in.Kind)
		}
		return dispatch(in), nil
	}
}

func betCommand(intent func(int) session.Intent) func([]string, pot.State) (Parsed, error) {
	return func(args []string, s pot.State) (Parsed, error) {
		if len(args) != 1 {
			return Parsed{}, pot.ErrInvalidBet
		}
		if strings.EqualFold(args[0], "max") {
			return dispatch(intent(s.MaxBet())), nil
		}
		bet, err := pot.ParseBet(args[0])
		if err != nil {
			return Parsed{}, err
		}
		return dispatch(intent(bet)), nil
	}
}
