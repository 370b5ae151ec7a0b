// Package console is a line based front end for the pot game.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"

	"github.com/lox/potgame/internal/ledger"
	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/session"
)

// Styles contains styling for the console
type Styles struct {
	Prompt  lipgloss.Style
	Title   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Pot     lipgloss.Style
	Dealer  lipgloss.Style
	Turn    lipgloss.Style
}

// DefaultStyles returns the console colours.
func DefaultStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		Pot:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		Dealer:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C39BD3")).Bold(true),
		Turn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
	}
}

// Console runs commands against a session
type Console struct {
	session  *session.Session
	out      io.Writer
	currency string
	styles   Styles
	logger   *log.Logger

	// confirm asks a yes/no question before destructive commands.
	confirm func(prompt string) bool
}

// New creates a console writing to out. Confirmation prompts are
// answered "no" until a line reader is attached by Run.
func New(sess *session.Session, out io.Writer, currency string, logger *log.Logger) *Console {
	return &Console{
		session:  sess,
		out:      out,
		currency: currency,
		styles:   DefaultStyles(),
		logger:   logger.WithPrefix("console"),
		confirm:  func(string) bool { return false },
	}
}

// SetConfirm replaces the confirmation prompt.
func (c *Console) SetConfirm(fn func(prompt string) bool) {
	c.confirm = fn
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, historyFile string) error {
	completer := readline.NewPrefixCompleter()
	for _, name := range commandNames() {
		completer.Children = append(completer.Children, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.styles.Prompt.Render("pot> "),
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          c.out,
	})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer func() {
		if err := rl.Close(); err != nil {
			c.logger.Error("Failed to close console", "error", err)
		}
	}()

	c.confirm = func(prompt string) bool {
		rl.SetPrompt(c.styles.Warning.Render(prompt + " [y/N] "))
		defer rl.SetPrompt(c.styles.Prompt.Render("pot> "))
		line, err := rl.Readline()
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}

	c.printf("%s\n\n", c.styles.Title.Render(" Pot Game "))
	c.show()
	c.printf("%s\n", c.styles.Info.Render("Type 'help' for commands."))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			c.printf("%s\n", c.styles.Info.Render("Use 'quit' to exit"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if quit := c.Execute(ctx, line); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the console should
// exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parsed, err := Parse(line, c.session.State())
	if err != nil {
		c.printError(err)
		return false
	}

	switch parsed.Action {
	case ActionQuit:
		return true
	case ActionHelp:
		c.help()
		return false
	case ActionShow:
		c.show()
		return false
	case ActionHistory:
		c.history()
		return false
	case ActionMax:
		c.printf("Max bet: %s\n", c.styles.Pot.Render(ledger.FormatAmount(c.currency, c.session.State().MaxBet())))
		return false
	}

	if parsed.Intent.Kind == session.IntentReset &&
		!c.confirm("Reset the game? All progress will be lost.") {
		c.printf("%s\n", c.styles.Info.Render("Reset cancelled"))
		return false
	}

	before := c.session.State()
	_, err = c.session.Dispatch(ctx, parsed.Intent)
	var saveErr *session.SaveError
	switch {
	case errors.As(err, &saveErr):
		c.printf("%s\n", c.styles.Warning.Render("Warning: "+err.Error()))
	case err != nil:
		c.printError(err)
		return false
	}
	c.printf("%s\n", c.styles.Success.Render(Describe(parsed.Intent, before, c.currency)))
	if parsed.Intent.Kind != session.IntentAddPlayer && parsed.Intent.Kind != session.IntentRemovePlayer {
		c.show()
	}
	return false
}

// Describe summarises an accepted intent in words.
func Describe(in session.Intent, before pot.State, currency string) string {
	who := "?"
	if p, ok := before.CurrentPlayer(); ok {
		who = p.Name
	}
	switch in.Kind {
	case session.IntentAddPlayer:
		return fmt.Sprintf("Added %s", strings.TrimSpace(in.Name))
	case session.IntentRemovePlayer:
		if in.Index >= 0 && in.Index < len(before.Players) {
			return fmt.Sprintf("Removed %s", before.Players[in.Index].Name)
		}
		return "Nothing to remove"
	case session.IntentStartGame:
		return fmt.Sprintf("Game started, pot is %s", ledger.FormatAmount(currency, len(before.Players)*pot.Ante))
	case session.IntentNewRound:
		return fmt.Sprintf("Round %d", before.Round+1)
	case session.IntentWin:
		return fmt.Sprintf("%s wins %s", who, ledger.FormatAmount(currency, in.Bet*2))
	case session.IntentLose:
		return fmt.Sprintf("%s loses %s", who, ledger.FormatAmount(currency, in.Bet))
	case session.IntentUndo:
		return "Undone"
	case session.IntentRedo:
		return "Redone"
	case session.IntentReset:
		return "Game reset"
	}
	return string(in.Kind)
}

func (c *Console) show() {
	c.printf("%s", Render(c.session.State(), c.currency, c.styles))
}

func (c *Console) help() {
	c.printf("%s\n", c.styles.Title.Render(" Commands "))
	for _, cmd := range Commands() {
		aliases := ""
		if len(cmd.Aliases) > 0 {
			aliases = c.styles.Info.Render(" (" + strings.Join(cmd.Aliases, ", ") + ")")
		}
		c.printf("  %-16s %s%s\n", cmd.Usage, cmd.Description, aliases)
	}
}

func (c *Console) history() {
	events := c.session.Events()
	if len(events) == 0 {
		c.printf("%s\n", c.styles.Info.Render("Nothing has happened yet"))
		return
	}
	for i, e := range events {
		detail := ""
		switch e.Kind {
		case pot.EventAddPlayer:
			detail = " " + e.Name
		case pot.EventRemovePlayer:
			detail = fmt.Sprintf(" seat %d", e.Index+1)
		case pot.EventWin, pot.EventLose:
			detail = " " + ledger.FormatAmount(c.currency, e.Bet)
		}
		c.printf("%3d  %s  %s%s\n", i+1, e.At.Format("15:04:05"), e.Kind, detail)
	}
}

func (c *Console) printError(err error) {
	c.printf("%s\n", c.styles.Error.Render("Error: "+session.Message(err)))
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Render draws the table as plain styled text.
func Render(s pot.State, currency string, st Styles) string {
	var b strings.Builder

	if !s.Started {
		fmt.Fprintf(&b, "%s\n", st.Info.Render(fmt.Sprintf("Setup: %d players", len(s.Players))))
		for i, p := range s.Players {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, p.Name)
		}
		if len(s.Players) < pot.MinPlayers {
			fmt.Fprintf(&b, "%s\n", st.Info.Render("Add at least 2 players to begin"))
		}
		return b.String()
	}

	turn, _ := s.CurrentPlayer()
	dealer, _ := s.Dealer()
	fmt.Fprintf(&b, "Round %d  %s  Turn: %s  Dealer: %s  Max bet: %s\n",
		s.Round,
		st.Pot.Render("Pot: "+ledger.FormatAmount(currency, s.Pot)),
		st.Turn.Render(turn.Name),
		st.Dealer.Render(dealer.Name),
		ledger.FormatAmount(currency, s.MaxBet()),
	)
	for _, row := range ledger.Standings(s) {
		var badges []string
		if row.Dealer {
			badges = append(badges, st.Dealer.Render("DEALER"))
		}
		if row.Turn {
			badges = append(badges, st.Turn.Render("TURN"))
		}
		balance := ledger.FormatBalance(currency, row.Balance)
		switch {
		case row.Balance > 0:
			balance = st.Success.Render(balance)
		case row.Balance < 0:
			balance = st.Error.Render(balance)
		}
		fmt.Fprintf(&b, "  %d. %-12s %8s  in %s  out %s %s\n",
			row.Seat+1, row.Name, balance,
			ledger.FormatAmount(currency, row.Contributed),
			ledger.FormatAmount(currency, row.Withdrawn),
			strings.Join(badges, " "),
		)
	}
	return b.String()
}
