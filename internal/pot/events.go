package pot

import (
	"fmt"
	"time"
)

// EventKind names an accepted transition.
type EventKind string

const (
	EventAddPlayer    EventKind = "add_player"
	EventRemovePlayer EventKind = "remove_player"
	EventStartGame    EventKind = "start_game"
	EventNewRound     EventKind = "new_round"
	EventWin          EventKind = "win"
	EventLose         EventKind = "lose"
)

// String returns the string representation of the event kind
func (k EventKind) String() string {
	return string(k)
}

// Event records one accepted transition and its input.
type Event struct {
	ID    string    `json:"id"`
	Kind  EventKind `json:"kind"`
	Name  string    `json:"name,omitempty"`
	Index int       `json:"index,omitempty"`
	Bet   int       `json:"bet,omitempty"`
	At    time.Time `json:"at"`
}

// Apply runs the operation described by e against s.
func Apply(s State, e Event) (State, error) {
	switch e.Kind {
	case EventAddPlayer:
		return AddPlayer(s, e.Name)
	case EventRemovePlayer:
		return RemovePlayer(s, e.Index)
	case EventStartGame:
		return StartGame(s)
	case EventNewRound:
		return StartNewRound(s)
	case EventWin:
		return PlayerWins(s, e.Bet)
	case EventLose:
		return PlayerLoses(s, e.Bet)
	default:
		return s, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// Replay folds events over base. On failure base is returned unchanged.
func Replay(base State, events []Event) (State, error) {
	s := base
	for i, e := range events {
		next, err := Apply(s, e)
		if err != nil {
			return base, fmt.Errorf("replay event %d (%s): %w", i, e.Kind, err)
		}
		s = next
	}
	return s, nil
}

// History is a log of accepted events on top of a base snapshot, with an
// undo cursor. Events past the cursor are the redo stack.
type History struct {
	base   State
	events []Event
	cursor int
}

// NewHistory creates an empty history starting from base.
func NewHistory(base State) *History {
	return &History{base: base.Clone()}
}

// Base returns the snapshot the history starts from.
func (h *History) Base() State { return h.base.Clone() }

// State folds the applied events over the base.
func (h *History) State() (State, error) {
	return Replay(h.base, h.events[:h.cursor])
}

// Record appends e after the cursor, discarding anything that was undone.
func (h *History) Record(e Event) {
	h.events = append(h.events[:h.cursor], e)
	h.cursor = len(h.events)
}

// Undo steps the cursor back one event.
func (h *History) Undo() (Event, bool) {
	if h.cursor == 0 {
		return Event{}, false
	}
	h.cursor--
	return h.events[h.cursor], true
}

// Redo re-applies the most recently undone event.
func (h *History) Redo() (Event, bool) {
	if h.cursor == len(h.events) {
		return Event{}, false
	}
	h.cursor++
	return h.events[h.cursor-1], true
}

// CanUndo reports whether there is anything to undo.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether there is anything to redo.
func (h *History) CanRedo() bool { return h.cursor < len(h.events) }

// Applied returns a copy of the events up to the cursor.
func (h *History) Applied() []Event {
	out := make([]Event, h.cursor)
	copy(out, h.events[:h.cursor])
	return out
}

// Len returns the number of applied events.
func (h *History) Len() int { return h.cursor }

// Clear forgets every event and restarts from base.
func (h *History) Clear(base State) {
	h.base = base.Clone()
	h.events = nil
	h.cursor = 0
}
