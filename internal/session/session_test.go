package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/potgame/internal/pot"
	"github.com/lox/potgame/internal/store"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestSession(t *testing.T, st store.Store) (*Session, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return New(context.Background(), st, WithLogger(quietLogger()), WithClock(clock)), clock
}

func mustDispatch(t *testing.T, s *Session, in ...Intent) pot.State {
	t.Helper()
	var state pot.State
	var err error
	for _, i := range in {
		state, err = s.Dispatch(context.Background(), i)
		require.NoError(t, err, "dispatch %s", i.Kind)
	}
	return state
}

// failingStore loads fine and refuses every write.
type failingStore struct{}

func (failingStore) Load(context.Context) (pot.State, error) { return pot.DefaultState(), nil }
func (failingStore) Save(context.Context, pot.State) error { return errors.New("disk full") }
func (failingStore) Clear(context.Context) error { return errors.New("disk full") }

// brokenStore cannot even be read.
type brokenStore struct{ failingStore }

func (brokenStore) Load(context.Context) (pot.State, error) {
	return pot.State{}, errors.New("permission denied")
}

func TestDispatchPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	s, _ := newTestSession(t, st)

	state := mustDispatch(t, s, AddPlayer("Alice"), AddPlayer("Bob"), StartGame(), NewRound())
	assert.Equal(t, 4, state.Pot)

	saved, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, saved)

	// A new session over the same store resumes the game.
	resumed, _ := newTestSession(t, st)
	assert.Equal(t, state, resumed.State())
	assert.Empty(t, resumed.Events())
}

func TestDispatchRejection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	s, _ := newTestSession(t, st)
	mustDispatch(t, s, AddPlayer("Alice"))
	before := st.Raw()

	state, err := s.Dispatch(ctx, StartGame())
	assert.ErrorIs(t, err, pot.ErrInsufficientPlayers)
	assert.False(t, state.Started)
	assert.Equal(t, before, st.Raw(), "rejections are not saved")
	assert.Len(t, s.Events(), 1)

	_, err = s.Dispatch(ctx, Intent{Kind: "shuffle"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
	assert.Equal(t, "unknown_action", pot.Code(err))
}

func TestDispatchStaleIndex(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, store.NewMemory())
	mustDispatch(t, s, AddPlayer("Alice"))

	state, err := s.Dispatch(context.Background(), RemovePlayer(4))
	require.NoError(t, err)
	assert.Len(t, state.Players, 1)
	assert.Len(t, s.Events(), 1, "no-ops are not recorded")
}

func TestEventsAreStamped(t *testing.T) {
	t.Parallel()

	s, clock := newTestSession(t, store.NewMemory())
	start := clock.Now()
	mustDispatch(t, s, AddPlayer("Alice"))
	clock.Advance(5 * time.Second).MustWait(context.Background())
	mustDispatch(t, s, AddPlayer("Bob"))

	events := s.Events()
	require.Len(t, events, 2)
	assert.True(t, events[0].At.Equal(start))
	assert.True(t, events[1].At.Equal(start.Add(5*time.Second)))
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, "Bob", events[1].Name)
}

func TestUndoRedo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	s, _ := newTestSession(t, st)
	afterRound := mustDispatch(t, s, AddPlayer("Alice"), AddPlayer("Bob"), StartGame(), NewRound())
	afterLoss := mustDispatch(t, s, Lose(2))

	state, err := s.Dispatch(ctx, Undo())
	require.NoError(t, err)
	assert.Equal(t, afterRound, state)
	saved, _ := st.Load(ctx)
	assert.Equal(t, afterRound, saved, "undo is saved")
	assert.True(t, s.CanRedo())

	state, err = s.Dispatch(ctx, Redo())
	require.NoError(t, err)
	assert.Equal(t, afterLoss, state)

	_, err = s.Dispatch(ctx, Redo())
	assert.ErrorIs(t, err, ErrNothingToRedo)

	for s.CanUndo() {
		mustDispatch(t, s, Undo())
	}
	assert.Equal(t, pot.DefaultState(), s.State())
	_, err = s.Dispatch(ctx, Undo())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoStopsAtRestoredGame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := store.NewMemory()
	first, _ := newTestSession(t, st)
	restored := mustDispatch(t, first, AddPlayer("Alice"), AddPlayer("Bob"), StartGame())

	s, _ := newTestSession(t, st)
	mustDispatch(t, s, Win(1))
	state := mustDispatch(t, s, Undo())
	assert.Equal(t, restored, state)

	_, err := s.Dispatch(ctx, Undo())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestReset(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	s, _ := newTestSession(t, st)
	mustDispatch(t, s, AddPlayer("Alice"), AddPlayer("Bob"), StartGame())

	state := mustDispatch(t, s, Reset())
	assert.Equal(t, pot.DefaultState(), state)
	assert.Nil(t, st.Raw(), "reset clears the saved game")
	assert.False(t, s.CanUndo())
	assert.Empty(t, s.Events())
}

func TestSaveFailureKeepsTransition(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, failingStore{})
	state, err := s.Dispatch(context.Background(), AddPlayer("Alice"))
	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.EqualError(t, saveErr.Err, "disk full")
	assert.Equal(t, "failed to save game: disk full", err.Error())
	assert.Len(t, state.Players, 1)
	assert.Equal(t, state, s.State())

	state, err = s.Dispatch(context.Background(), Reset())
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, pot.DefaultState(), state)
}

func TestRejectionIsNotSaveError(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, failingStore{})
	_, err := s.Dispatch(context.Background(), StartGame())
	require.ErrorIs(t, err, pot.ErrInsufficientPlayers)

	var saveErr *SaveError
	assert.False(t, errors.As(err, &saveErr), "rejections never reach the store")
}

func TestUnreadableStoreStartsFresh(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, brokenStore{})
	assert.Equal(t, pot.DefaultState(), s.State())
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, store.NewMemory())
	ch, cancel := s.Subscribe()

	initial := <-ch
	assert.Equal(t, pot.DefaultState(), initial)

	mustDispatch(t, s, AddPlayer("Alice"))
	got := <-ch
	assert.Len(t, got.Players, 1)

	// Nobody reads these; only the latest is kept.
	mustDispatch(t, s, AddPlayer("Bob"), AddPlayer("Carol"))
	got = <-ch
	assert.Len(t, got.Players, 3)

	mustDispatch(t, s, AddPlayer("Dave"))
	cancel()
	_, open := <-ch
	assert.False(t, open, "unread snapshot is dropped on cancel")
	cancel()
}

func TestConcurrentDispatch(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, store.NewMemory())
	mustDispatch(t, s, AddPlayer("Alice"), AddPlayer("Bob"), StartGame())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Dispatch(context.Background(), NewRound())
		}()
	}
	wg.Wait()

	state := s.State()
	assert.Equal(t, 21, state.Round)
	assert.Equal(t, 42, state.Pot)
	assert.NoError(t, pot.Validate(state))
}

func TestParseIntentKind(t *testing.T) {
	t.Parallel()

	k, err := ParseIntentKind("win")
	require.NoError(t, err)
	assert.Equal(t, IntentWin, k)

	_, err = ParseIntentKind("fold")
	assert.Error(t, err)
}

func TestIntentConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Intent
		want Intent
	}{
		{AddPlayer("Alice"), Intent{Kind: IntentAddPlayer, Name: "Alice"}},
		{RemovePlayer(2), Intent{Kind: IntentRemovePlayer, Index: 2}},
		{StartGame(), Intent{Kind: IntentStartGame}},
		{NewRound(), Intent{Kind: IntentNewRound}},
		{Win(3), Intent{Kind: IntentWin, Bet: 3}},
		{Lose(4), Intent{Kind: IntentLose, Bet: 4}},
		{Reset(), Intent{Kind: IntentReset}},
		{Undo(), Intent{Kind: IntentUndo}},
		{Redo(), Intent{Kind: IntentRedo}},
	}
	for _, tt := range tests {
		t.Run(string(tt.want.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in)
			kind, err := ParseIntentKind(string(tt.in.Kind))
			require.NoError(t, err)
			assert.Equal(t, tt.in.Kind, kind)
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{pot.ErrInsufficientPlayers, "You need at least 2 players to start."},
		{pot.ErrBetExceedsPot, "The bet can't be more than the pot."},
		{ErrNothingToUndo, "Nothing to undo."},
		{pot.ErrAmountTooLarge, "That amount is too large."},
		{errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}
