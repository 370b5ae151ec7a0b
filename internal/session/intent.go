package session

import (
	"fmt"

	"github.com/lox/potgame/internal/pot"
)

// IntentKind is a request a view can make of a session.
type IntentKind string

const (
	IntentAddPlayer    IntentKind = "add_player"
	IntentRemovePlayer IntentKind = "remove_player"
	IntentStartGame    IntentKind = "start"
	IntentNewRound     IntentKind = "new_round"
	IntentWin          IntentKind = "win"
	IntentLose         IntentKind = "lose"
	IntentReset        IntentKind = "reset"
	IntentUndo         IntentKind = "undo"
	IntentRedo         IntentKind = "redo"
)

var intentKinds = map[IntentKind]bool{
	IntentAddPlayer:    true,
	IntentRemovePlayer: true,
	IntentStartGame:    true,
	IntentNewRound:     true,
	IntentWin:          true,
	IntentLose:         true,
	IntentReset:        true,
	IntentUndo:         true,
	IntentRedo:         true,
}

// ParseIntentKind validates a kind received from outside the process.
func ParseIntentKind(s string) (IntentKind, error) {
	k := IntentKind(s)
	if !intentKinds[k] {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return k, nil
}

// Intent is one user request. Name is used by AddPlayer, Index by
// RemovePlayer and Bet by Win and Lose.
type Intent struct {
	Kind  IntentKind `json:"action"`
	Name  string     `json:"name,omitempty"`
	Index int        `json:"index,omitempty"`
	Bet   int        `json:"bet,omitempty"`
}

// AddPlayer seats name at the end of the table during setup.
func AddPlayer(name string) Intent { return Intent{Kind: IntentAddPlayer, Name: name} }

// RemovePlayer drops the player at index during setup.
func RemovePlayer(index int) Intent { return Intent{Kind: IntentRemovePlayer, Index: index} }

// StartGame leaves setup and collects the first ante.
func StartGame() Intent { return Intent{Kind: IntentStartGame} }

// NewRound collects another ante and passes the turn on.
func NewRound() Intent { return Intent{Kind: IntentNewRound} }

// Win pays the current player double bet out of the pot.
func Win(bet int) Intent { return Intent{Kind: IntentWin, Bet: bet} }

// Lose puts bet from the current player into the pot.
func Lose(bet int) Intent { return Intent{Kind: IntentLose, Bet: bet} }

// Reset discards the game and its history.
func Reset() Intent { return Intent{Kind: IntentReset} }

// Undo steps back over the last recorded event.
func Undo() Intent { return Intent{Kind: IntentUndo} }

// Redo reapplies the last undone event.
func Redo() Intent { return Intent{Kind: IntentRedo} }

// eventKind maps intents that become recorded events.
func (i Intent) eventKind() (pot.EventKind, bool) {
	switch i.Kind {
	case IntentAddPlayer:
		return pot.EventAddPlayer, true
	case IntentRemovePlayer:
		return pot.EventRemovePlayer, true
	case IntentStartGame:
		return pot.EventStartGame, true
	case IntentNewRound:
		return pot.EventNewRound, true
	case IntentWin:
		return pot.EventWin, true
	case IntentLose:
		return pot.EventLose, true
	}
	return "", false
}
