package pot

import (
	"strconv"
	"strings"
)

// AddPlayer appends a player with an empty ledger. Names are trimmed and
// are not required to be unique.
func AddPlayer(s State, name string) (State, error) {
	if s.Started {
		return s, ErrGameStarted
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}
	next := s.Clone()
	next.Players = append(next.Players, Player{Name: name})
	return next, nil
}

// RemovePlayer drops the player at index. An index that no longer exists
// returns s unchanged with ErrIndexOutOfRange.
func RemovePlayer(s State, index int) (State, error) {
	if s.Started {
		return s, ErrGameStarted
	}
	if index < 0 || index >= len(s.Players) {
		return s, ErrIndexOutOfRange
	}
	next := s.Clone()
	next.Players = append(next.Players[:index], next.Players[index+1:]...)
	// Keep pointers inside the shrunken roster. Both stay 0 in Setup under
	// normal use, this only matters for hand-built snapshots.
	next.DealerIndex = clampIndex(next.DealerIndex, len(next.Players))
	next.CurrentTurn = clampIndex(next.CurrentTurn, len(next.Players))
	return next, nil
}

// StartGame leaves Setup. Every player antes once.
func StartGame(s State) (State, error) {
	if s.Started {
		return s, ErrGameStarted
	}
	if len(s.Players) < MinPlayers {
		return s, ErrInsufficientPlayers
	}
	next := s.Clone()
	next.Started = true
	for i := range next.Players {
		next.Players[i].Contributed = Ante
	}
	next.Pot = len(next.Players) * Ante
	return next, nil
}

// StartNewRound collects a fresh ante from everyone and passes the turn on.
func StartNewRound(s State) (State, error) {
	if !s.Started || len(s.Players) == 0 {
		return s, ErrNotStarted
	}
	next := s.Clone()
	if err := collectAntes(&next); err != nil {
		return s, err
	}
	next.Round++
	next.CurrentTurn = (next.CurrentTurn + 1) % len(next.Players)
	return next, nil
}

// PlayerWins pays the current player twice their stake out of the pot and
// moves the dealer on. The turn does not change.
func PlayerWins(s State, bet int) (State, error) {
	if err := checkBet(s, bet); err != nil {
		return s, err
	}
	next := s.Clone()
	p := &next.Players[next.CurrentTurn]
	payout, err := addAmount(bet, bet)
	if err != nil {
		return s, err
	}
	if p.Contributed, err = addAmount(p.Contributed, bet); err != nil {
		return s, err
	}
	if p.Withdrawn, err = addAmount(p.Withdrawn, payout); err != nil {
		return s, err
	}
	next.Pot -= bet
	next.DealerIndex = (next.DealerIndex + 1) % len(next.Players)
	return next, nil
}

// PlayerLoses puts the current player's stake in the pot together with a
// new ante from every player, then passes the turn on.
func PlayerLoses(s State, bet int) (State, error) {
	if err := checkBet(s, bet); err != nil {
		return s, err
	}
	next := s.Clone()
	if err := collectAntes(&next); err != nil {
		return s, err
	}
	var err error
	p := &next.Players[next.CurrentTurn]
	if p.Contributed, err = addAmount(p.Contributed, bet); err != nil {
		return s, err
	}
	if next.Pot, err = addAmount(next.Pot, bet); err != nil {
		return s, err
	}
	next.CurrentTurn = (next.CurrentTurn + 1) % len(next.Players)
	return next, nil
}

// collectAntes charges every player one ante into the pot.
func collectAntes(s *State) error {
	var err error
	for i := range s.Players {
		if s.Players[i].Contributed, err = addAmount(s.Players[i].Contributed, Ante); err != nil {
			return err
		}
	}
	s.Pot, err = addAmount(s.Pot, len(s.Players)*Ante)
	return err
}

// Reset discards the game.
func Reset() State {
	return DefaultState()
}

// ParseBet reads a bet typed by a user.
func ParseBet(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrInvalidBet
	}
	bet, err := strconv.Atoi(text)
	if err != nil || bet <= 0 {
		return 0, ErrInvalidBet
	}
	return bet, nil
}

func checkBet(s State, bet int) error {
	if !s.Started || len(s.Players) == 0 {
		return ErrNotStarted
	}
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > s.Pot {
		return ErrBetExceedsPot
	}
	return nil
}

// addAmount returns a+b for non-negative amounts, or ErrAmountTooLarge
// when the result would pass MaxAmount.
func addAmount(a, b int) (int, error) {
	if b > MaxAmount || a > MaxAmount-b {
		return 0, ErrAmountTooLarge
	}
	return a + b, nil
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
