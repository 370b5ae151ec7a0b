// Package pot implements the pot-accounting rules for the pot game.
//
// The main type is State, an immutable snapshot of a game: the player
// ledger, the shared pot, the dealer and turn pointers and the round
// counter. Every operation takes a State and returns a new one, leaving
// the input untouched.
//
// # Basic Usage
//
//	s := pot.DefaultState()
//	s, _ = pot.AddPlayer(s, "Alice")
//	s, _ = pot.AddPlayer(s, "Bob")
//	s, err := pot.StartGame(s)
//	if err != nil {
//	    // errors.Is(err, pot.ErrInsufficientPlayers)
//	}
//	s, err = pot.PlayerLoses(s, 1)
//
// # Phases
//
// A game is in Setup until StartGame succeeds. Only AddPlayer and
// RemovePlayer are accepted in Setup. Once Active, StartNewRound,
// PlayerWins and PlayerLoses are the only transitions; Reset returns to
// an empty Setup.
//
// # Event Log
//
// Accepted operations can be recorded as Events in a History. The current
// State is a fold of the recorded events over a base snapshot, which gives
// undo and redo without changing the operations themselves.
package pot
