// Package tui is the full screen terminal view of the pot game.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/potgame/internal/ledger"
	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/session"
)

// stateMsg carries a snapshot published by the session.
type stateMsg pot.State

// Model is the Bubble Tea model for one game session.
type Model struct {
	ctx      context.Context
	session  *session.Session
	logger   *log.Logger
	currency string

	// UI components
	nameInput textinput.Model
	betInput  textinput.Model

	// Subscription to session snapshots
	updates <-chan pot.State
	cancel  func()

	state      pot.State
	selected   int // Highlighted player on the setup screen
	status     string
	statusErr  bool
	confirming bool // Waiting for y/n before a reset
	quitting   bool

	width  int
	height int
}

// New creates a model bound to sess. Intents are dispatched with ctx.
func New(ctx context.Context, sess *session.Session, currency string, logger *log.Logger) *Model {
	name := textinput.New()
	name.Placeholder = "Player name"
	name.CharLimit = 32
	name.Width = 32
	name.Prompt = "Name > "
	name.PromptStyle = SelectedStyle
	name.Focus()

	bet := textinput.New()
	bet.Placeholder = "Bet"
	bet.CharLimit = 9
	bet.Width = 12
	bet.Prompt = "Bet > "
	bet.PromptStyle = SelectedStyle

	updates, cancel := sess.Subscribe()
	m := &Model{
		ctx:       ctx,
		session:   sess,
		logger:    logger.WithPrefix("tui"),
		currency:  currency,
		nameInput: name,
		betInput:  bet,
		updates:   updates,
		cancel:    cancel,
		state:     sess.State(),
	}
	m.focusInputs()
	return m
}

// Run shows the model until the user quits or ctx is done.
func Run(ctx context.Context, sess *session.Session, currency string, logger *log.Logger) error {
	m := New(ctx, sess, currency, logger)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Init starts listening for snapshots.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForState())
}

// waitForState returns a command that delivers the next published snapshot.
func (m *Model) waitForState() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

// State returns the snapshot the model last rendered.
func (m *Model) State() pot.State {
	return m.state
}

// Status returns the last message shown in the status line.
func (m *Model) Status() string {
	return m.status
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.setState(pot.State(msg))
		return m, m.waitForState()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m, m.handleConfirm(msg)
		}
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.state.Started {
		m.betInput, cmd = m.betInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	m.confirming = false
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "y", "Y":
		if m.dispatch(session.Reset()) {
			m.nameInput.SetValue("")
			m.betInput.SetValue("")
			m.setStatus("Game reset", false)
		}
	default:
		m.setStatus("Reset cancelled", false)
	}
	return nil
}

// handleKey runs the shortcut bound to msg and reports whether the key was
// consumed.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return true, m.quit()
	case "ctrl+z":
		if m.dispatch(session.Undo()) {
			m.setStatus("Undone", false)
		}
		return true, nil
	case "ctrl+y":
		if m.dispatch(session.Redo()) {
			m.setStatus("Redone", false)
		}
		return true, nil
	case "ctrl+r":
		m.confirming = true
		m.setStatus("Reset the game? All progress will be lost. (y/n)", false)
		return true, nil
	}

	if m.state.Started {
		return m.handleActiveKey(msg)
	}
	return m.handleSetupKey(msg)
}

func (m *Model) handleSetupKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		if m.dispatch(session.AddPlayer(name)) {
			m.nameInput.SetValue("")
			m.setStatus("Added "+name, false)
		}
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(m.state.Players)-1 {
			m.selected++
		}
	case "ctrl+d":
		if p, ok := m.playerAt(m.selected); ok && m.dispatch(session.RemovePlayer(m.selected)) {
			m.setStatus("Removed "+p.Name, false)
		}
	case "ctrl+s":
		if m.dispatch(session.StartGame()) {
			m.setStatus(fmt.Sprintf("Game started, pot is %s", ledger.FormatAmount(m.currency, m.state.Pot)), false)
		}
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) handleActiveKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		if m.dispatch(session.NewRound()) {
			m.setStatus(fmt.Sprintf("Round %d", m.state.Round), false)
		}
	case "ctrl+x":
		m.betInput.SetValue(strconv.Itoa(m.state.MaxBet()))
		m.betInput.CursorEnd()
	case "ctrl+w", "ctrl+l":
		bet, err := pot.ParseBet(m.betInput.Value())
		if err != nil {
			m.setStatus(session.Message(err), true)
			return true, nil
		}
		who, _ := m.state.CurrentPlayer()
		if msg.String() == "ctrl+w" {
			if m.dispatch(session.Win(bet)) {
				m.setStatus(fmt.Sprintf("%s wins %s", who.Name, ledger.FormatAmount(m.currency, bet*2)), false)
				m.betInput.SetValue("")
			}
		} else if m.dispatch(session.Lose(bet)) {
			m.setStatus(fmt.Sprintf("%s loses %s", who.Name, ledger.FormatAmount(m.currency, bet)), false)
			m.betInput.SetValue("")
		}
	default:
		return false, nil
	}
	return true, nil
}

// dispatch sends in to the session and reports whether it changed the
// game. Rejections are shown in the status line.
func (m *Model) dispatch(in session.Intent) bool {
	before := m.state
	next, err := m.session.Dispatch(m.ctx, in)
	var saveErr *session.SaveError
	switch {
	case errors.As(err, &saveErr):
		m.setState(next)
		m.logger.Warn("Game changed but was not saved", "error", err)
		m.setStatus("Warning: "+err.Error(), true)
		return false
	case err != nil:
		m.logger.Debug("Rejected", "action", in.Kind, "error", err)
		m.setStatus(session.Message(err), true)
		return false
	}
	m.setState(next)
	return !next.Equal(before) || in.Kind == session.IntentReset
}

func (m *Model) setState(s pot.State) {
	wasStarted := m.state.Started
	m.state = s
	if m.selected >= len(s.Players) {
		m.selected = max(len(s.Players)-1, 0)
	}
	if wasStarted != s.Started {
		m.focusInputs()
	}
}

// focusInputs focuses the input that belongs to the current phase.
func (m *Model) focusInputs() {
	if m.state.Started {
		m.nameInput.Blur()
		m.betInput.Focus()
		return
	}
	m.betInput.Blur()
	m.nameInput.Focus()
}

func (m *Model) playerAt(i int) (pot.Player, bool) {
	if i < 0 || i >= len(m.state.Players) {
		return pot.Player{}, false
	}
	return m.state.Players[i], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	return tea.Quit
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	if m.state.Started {
		body = m.renderActive()
	} else {
		body = m.renderSetup()
	}

	panel := PanelStyle
	if m.width > 4 {
		panel = panel.Width(m.width - 2)
	}

	sections := []string{
		HeaderStyle.Render("Pot Game"),
		panel.Render(body),
		m.renderStatus(),
		InfoStyle.Render(m.helpLine()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderSetup() string {
	var b strings.Builder
	b.WriteString(StatLabelStyle.Render(fmt.Sprintf("Players (%d)", len(m.state.Players))))
	b.WriteString("\n")
	if len(m.state.Players) == 0 {
		b.WriteString(InfoStyle.Render("  No players yet"))
		b.WriteString("\n")
	}
	for i, p := range m.state.Players {
		line := fmt.Sprintf("  %d. %s", i+1, p.Name)
		if i == m.selected {
			line = SelectedStyle.Render("> " + fmt.Sprintf("%d. %s", i+1, p.Name))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	if len(m.state.Players) < pot.MinPlayers {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Add at least 2 players to begin"))
	}
	return b.String()
}

func (m *Model) renderActive() string {
	s := m.state
	turn, _ := s.CurrentPlayer()
	dealer, _ := s.Dealer()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", HeaderStyle.Render(fmt.Sprintf("Round %d", s.Round)),
		PotStyle.Render("Pot: "+ledger.FormatAmount(m.currency, s.Pot)))
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n\n",
		StatLabelStyle.Render("Turn:"), PlayerStyle.Render(turn.Name),
		StatLabelStyle.Render("Dealer:"), PlayerStyle.Render(dealer.Name),
		StatLabelStyle.Render("Max bet:"), PotStyle.Render(ledger.FormatAmount(m.currency, s.MaxBet())),
	)

	for _, row := range ledger.Standings(s) {
		balance := ledger.FormatBalance(m.currency, row.Balance)
		switch {
		case row.Balance > 0:
			balance = SuccessStyle.Render(balance)
		case row.Balance < 0:
			balance = ErrorStyle.Render(balance)
		}
		var badges []string
		if row.Dealer {
			badges = append(badges, DealerBadgeStyle.Render("DEALER"))
		}
		if row.Turn {
			badges = append(badges, TurnBadgeStyle.Render("TURN"))
		}
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			PlayerStyle.Render(fmt.Sprintf("%-12s", row.Name)),
			balance,
			strings.Join(badges, " "),
		)
	}
	b.WriteString("\n")
	b.WriteString(m.betInput.View())
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.confirming:
		return WarningStyle.Render(m.status)
	case m.statusErr:
		return ErrorStyle.Render(m.status)
	}
	return SuccessStyle.Render(m.status)
}

func (m *Model) helpLine() string {
	if m.state.Started {
		return "ctrl+w win · ctrl+l lose · ctrl+x max · ctrl+n new round · ctrl+z undo · ctrl+y redo · ctrl+r reset · esc quit"
	}
	return "enter add · ↑/↓ select · ctrl+d remove · ctrl+s start · ctrl+z undo · ctrl+r reset · esc quit"
}
