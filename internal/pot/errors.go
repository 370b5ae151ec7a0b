package pot

import (
	"errors"
	"fmt"
)

// Error is a rejected transition. Callers compare with errors.Is against
// the sentinel values below and show Code to users or clients.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable machine readable code of the error.
func (e *Error) Code() string { return e.code }

// NewError creates a rejection with a code, for collaborators that reject
// requests of their own.
func NewError(code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

var (
	ErrInsufficientPlayers = NewError("insufficient_players", "at least 2 players are needed to start")
	ErrInvalidBet          = NewError("invalid_bet", "bet must be a positive whole number")
	ErrBetExceedsPot       = NewError("bet_exceeds_pot", "bet is larger than the pot")
	ErrIndexOutOfRange     = NewError("index_out_of_range", "no player at that index")
	ErrEmptyName           = NewError("empty_name", "player name is empty")
	ErrGameStarted         = NewError("game_started", "game has already started")
	ErrNotStarted          = NewError("game_not_started", "game has not started")
	ErrInvalidState        = NewError("invalid_state", "invalid game state")
	ErrAmountTooLarge      = NewError("amount_too_large", "amount is larger than the game can track")
)

// Code returns the code of the first *Error in err's chain, or "internal"
// when err is not a rejection.
func Code(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.code
	}
	return "internal"
}

// invalid wraps ErrInvalidState with the rule that was broken.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
