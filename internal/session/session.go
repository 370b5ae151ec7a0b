// Package session connects the pot rules to storage and to the views.
//
// A Session owns the current snapshot. Views dispatch Intents, the session
// runs the matching pot operation, records it for undo, saves the new
// snapshot and publishes it to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/store"
)

var (
	ErrNothingToUndo = pot.NewError("nothing_to_undo", "nothing to undo")
	ErrNothingToRedo = pot.NewError("nothing_to_redo", "nothing to redo")
	ErrUnknownIntent = pot.NewError("unknown_action", "unknown action")
)

// SaveError reports a transition that was applied and published but could
// not be written to the store. The snapshot returned alongside it is the
// new one.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to %s game: %v", e.Op, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Message turns a rejection into the text shown to players.
func Message(err error) string {
	switch {
	case errors.Is(err, pot.ErrInsufficientPlayers):
		return "You need at least 2 players to start."
	case errors.Is(err, pot.ErrInvalidBet):
		return "Enter a bet amount."
	case errors.Is(err, pot.ErrBetExceedsPot):
		return "The bet can't be more than the pot."
	case errors.Is(err, pot.ErrGameStarted):
		return "The game has already started."
	case errors.Is(err, pot.ErrNotStarted):
		return "Start the game first."
	case errors.Is(err, pot.ErrEmptyName):
		return "Enter a player name."
	case errors.Is(err, ErrNothingToUndo):
		return "Nothing to undo."
	case errors.Is(err, ErrNothingToRedo):
		return "Nothing to redo."
	case errors.Is(err, pot.ErrAmountTooLarge):
		return "That amount is too large."
	}
	return err.Error()
}

// Session serialises intents against one game.
type Session struct {
	mu      sync.Mutex
	store   store.Store
	history *pot.History
	state   pot.State
	logger  *log.Logger
	clock   quartz.Clock

	subs    map[int]chan pot.State
	nextSub int
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger.WithPrefix("session") }
}

// WithClock sets the clock used to stamp events.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// New restores the game held by st. A store that cannot be read starts a
// fresh game rather than failing.
func New(ctx context.Context, st store.Store, opts ...Option) *Session {
	s := &Session{
		store:  st,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		clock:  quartz.NewReal(),
		subs:   make(map[int]chan pot.State),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := st.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load game, starting fresh", "error", err)
		initial = pot.DefaultState()
	}
	s.state = initial
	s.history = pot.NewHistory(initial)
	s.logger.Info("Session ready", "players", len(initial.Players), "round", initial.Round, "started", initial.Started)
	return s
}

// State returns the current snapshot.
func (s *Session) State() pot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Events returns the recorded events that make up the current snapshot,
// oldest first.
func (s *Session) Events() []pot.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Applied()
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Dispatch applies in and returns the resulting snapshot. On rejection the
// current snapshot is returned with the error and nothing changes. A
// stale player index is ignored without an error.
//
// A failed save keeps the transition in memory and returns the new
// snapshot along with a *SaveError.
func (s *Session) Dispatch(ctx context.Context, in Intent) (pot.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch in.Kind {
	case IntentReset:
		return s.reset(ctx)
	case IntentUndo:
		return s.step(ctx, s.history.Undo, s.history.Redo, ErrNothingToUndo)
	case IntentRedo:
		return s.step(ctx, s.history.Redo, s.history.Undo, ErrNothingToRedo)
	}

	kind, ok := in.eventKind()
	if !ok {
		return s.state.Clone(), fmt.Errorf("%w: %q", ErrUnknownIntent, in.Kind)
	}
	ev := pot.Event{
		ID:    uuid.NewString(),
		Kind:  kind,
		Name:  in.Name,
		Index: in.Index,
		Bet:   in.Bet,
		At:    s.clock.Now(),
	}

	next, err := pot.Apply(s.state, ev)
	if errors.Is(err, pot.ErrIndexOutOfRange) {
		s.logger.Debug("Ignoring stale player index", "index", in.Index, "players", len(s.state.Players))
		return s.state.Clone(), nil
	}
	if err != nil {
		s.logger.Debug("Rejected", "action", in.Kind, "bet", in.Bet, "reason", pot.Code(err))
		return s.state.Clone(), err
	}

	s.history.Record(ev)
	s.logger.Info("Applied", "action", in.Kind, "event", ev.ID, "pot", next.Pot, "round", next.Round)
	return s.commit(ctx, next)
}

// step moves the history cursor with move, rebuilds the snapshot and
// moves back with revert if the rebuild fails.
func (s *Session) step(ctx context.Context, move, revert func() (pot.Event, bool), empty error) (pot.State, error) {
	ev, ok := move()
	if !ok {
		return s.state.Clone(), empty
	}
	next, err := s.history.State()
	if err != nil {
		revert()
		s.logger.Error("Failed to rebuild game from history", "error", err)
		return s.state.Clone(), err
	}
	s.logger.Info("Stepped history", "event", ev.ID, "kind", ev.Kind, "applied", s.history.Len())
	return s.commit(ctx, next)
}

func (s *Session) reset(ctx context.Context) (pot.State, error) {
	s.state = pot.Reset()
	s.history.Clear(s.state)
	s.publish()
	s.logger.Info("Game reset")
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear saved game", "error", err)
		return s.state.Clone(), &SaveError{Op: "clear saved", Err: err}
	}
	return s.state.Clone(), nil
}

func (s *Session) commit(ctx context.Context, next pot.State) (pot.State, error) {
	s.state = next
	s.publish()
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("Failed to save game", "error", err)
		return next.Clone(), &SaveError{Op: "save", Err: err}
	}
	return next.Clone(), nil
}

// Subscribe returns a channel that receives the snapshot after every
// change, starting with the current one. A slow reader only sees the
// latest snapshot. cancel discards any unread snapshot and closes the
// channel.
func (s *Session) Subscribe() (<-chan pot.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan pot.State, 1)
	ch <- s.state.Clone()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			select {
			case <-ch:
			default:
			}
			close(ch)
		})
	}
	return ch, cancel
}

// publish must be called with mu held.
func (s *Session) publish() {
	for _, ch := range s.subs {
		snap := s.state.Clone()
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot the reader has not picked up yet.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
