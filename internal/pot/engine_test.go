package pot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPlayerGame returns Alice and Bob right after StartGame.
func twoPlayerGame(t *testing.T) State {
	t.Helper()
	s := DefaultState()
	var err error
	for _, name := range []string{"Alice", "Bob"} {
		s, err = AddPlayer(s, name)
		require.NoError(t, err)
	}
	s, err = StartGame(s)
	require.NoError(t, err)
	return s
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()

	t.Run("trims and appends", func(t *testing.T) {
		s, err := AddPlayer(DefaultState(), "  Alice ")
		require.NoError(t, err)
		require.Len(t, s.Players, 1)
		assert.Equal(t, Player{Name: "Alice"}, s.Players[0])
	})

	t.Run("rejects blank names", func(t *testing.T) {
		before := DefaultState()
		s, err := AddPlayer(before, "   ")
		assert.ErrorIs(t, err, ErrEmptyName)
		assert.True(t, s.Equal(before))
	})

	t.Run("allows duplicate names", func(t *testing.T) {
		s, _ := AddPlayer(DefaultState(), "Alice")
		s, err := AddPlayer(s, "Alice")
		require.NoError(t, err)
		assert.Len(t, s.Players, 2)
	})

	t.Run("rejected once started", func(t *testing.T) {
		s := twoPlayerGame(t)
		_, err := AddPlayer(s, "Carol")
		assert.ErrorIs(t, err, ErrGameStarted)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		s, _ := AddPlayer(DefaultState(), "Alice")
		before := s.Clone()
		_, _ = AddPlayer(s, "Bob")
		assert.True(t, s.Equal(before))
	})
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()

	s := DefaultState()
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		s, _ = AddPlayer(s, name)
	}

	tests := []struct {
		name    string
		index   int
		want    []string
		wantErr error
	}{
		{name: "first", index: 0, want: []string{"Bob", "Carol"}},
		{name: "middle", index: 1, want: []string{"Alice", "Carol"}},
		{name: "last", index: 2, want: []string{"Alice", "Bob"}},
		{name: "negative", index: -1, want: []string{"Alice", "Bob", "Carol"}, wantErr: ErrIndexOutOfRange},
		{name: "past end", index: 3, want: []string{"Alice", "Bob", "Carol"}, wantErr: ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RemovePlayer(s, tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			names := make([]string, len(got.Players))
			for i, p := range got.Players {
				names[i] = p.Name
			}
			assert.Equal(t, tt.want, names)
			assert.Len(t, s.Players, 3, "input must stay untouched")
		})
	}

	t.Run("rejected once started", func(t *testing.T) {
		_, err := RemovePlayer(twoPlayerGame(t), 0)
		assert.ErrorIs(t, err, ErrGameStarted)
	})
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	t.Run("two players", func(t *testing.T) {
		s := twoPlayerGame(t)
		want := State{
			Players:     []Player{{"Alice", 1, 0}, {"Bob", 1, 0}},
			DealerIndex: 0,
			CurrentTurn: 0,
			Pot:         2,
			Round:       1,
			Started:     true,
		}
		assert.Equal(t, want, s)
		assert.Equal(t, Active, s.Phase())
	})

	for _, n := range []int{0, 1} {
		before := DefaultState()
		for i := 0; i < n; i++ {
			before, _ = AddPlayer(before, "Solo")
		}
		s, err := StartGame(before)
		assert.ErrorIs(t, err, ErrInsufficientPlayers)
		assert.True(t, s.Equal(before))
		assert.False(t, s.Started)
	}

	t.Run("twice", func(t *testing.T) {
		_, err := StartGame(twoPlayerGame(t))
		assert.ErrorIs(t, err, ErrGameStarted)
	})
}

func TestStartNewRound(t *testing.T) {
	t.Parallel()

	s, err := StartNewRound(twoPlayerGame(t))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Pot)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 1, s.CurrentTurn)
	assert.Equal(t, 0, s.DealerIndex)
	for _, p := range s.Players {
		assert.Equal(t, 2, p.Contributed)
	}

	s, err = StartNewRound(s)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentTurn, "turn wraps around")

	_, err = StartNewRound(DefaultState())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestPlayerWins(t *testing.T) {
	t.Parallel()

	round, err := StartNewRound(twoPlayerGame(t))
	require.NoError(t, err)

	t.Run("pays double the stake", func(t *testing.T) {
		s, err := PlayerWins(round, 3)
		require.NoError(t, err)

		bob := s.Players[1]
		assert.Equal(t, 5, bob.Contributed)
		assert.Equal(t, 6, bob.Withdrawn)
		assert.Equal(t, 1, bob.Balance())
		assert.Equal(t, 1, s.Pot)
		assert.Equal(t, 1, s.DealerIndex)
		assert.Equal(t, 1, s.CurrentTurn, "a win keeps the turn")
		assert.Equal(t, round.Players[0], s.Players[0])
	})

	t.Run("bet larger than pot", func(t *testing.T) {
		s, err := PlayerWins(round, 10)
		assert.ErrorIs(t, err, ErrBetExceedsPot)
		assert.True(t, s.Equal(round))
	})

	t.Run("whole pot", func(t *testing.T) {
		s, err := PlayerWins(round, round.Pot)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Pot)
	})

	t.Run("dealer wraps", func(t *testing.T) {
		s, err := PlayerWins(round, 1)
		require.NoError(t, err)
		s, err = PlayerWins(s, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, s.DealerIndex)
	})

	for _, bet := range []int{0, -5} {
		s, err := PlayerWins(round, bet)
		assert.ErrorIs(t, err, ErrInvalidBet)
		assert.True(t, s.Equal(round))
	}

	t.Run("before start", func(t *testing.T) {
		_, err := PlayerWins(DefaultState(), 1)
		assert.ErrorIs(t, err, ErrNotStarted)
	})
}

func TestPlayerLoses(t *testing.T) {
	t.Parallel()

	before := State{
		Players:     []Player{{Name: "Alice", Contributed: 3}, {Name: "Bob", Contributed: 2}},
		CurrentTurn: 0,
		Pot:         5,
		Round:       2,
		Started:     true,
	}
	require.NoError(t, Validate(before))

	s, err := PlayerLoses(before, 3)
	require.NoError(t, err)

	assert.Equal(t, 7, s.Players[0].Contributed, "ante plus stake")
	assert.Equal(t, 3, s.Players[1].Contributed, "ante only")
	assert.Equal(t, 10, s.Pot)
	assert.Equal(t, 1, s.CurrentTurn)
	assert.Equal(t, 0, s.DealerIndex)
	assert.Equal(t, 2, s.Round)
	assert.NoError(t, Validate(s))

	t.Run("bet larger than pot", func(t *testing.T) {
		got, err := PlayerLoses(before, 6)
		assert.ErrorIs(t, err, ErrBetExceedsPot)
		assert.True(t, got.Equal(before))
	})

	t.Run("invalid bet", func(t *testing.T) {
		got, err := PlayerLoses(before, 0)
		assert.ErrorIs(t, err, ErrInvalidBet)
		assert.True(t, got.Equal(before))
	})
}

func TestAmountLimit(t *testing.T) {
	t.Parallel()

	nearLimit := State{
		Players: []Player{{Name: "Alice", Contributed: MaxAmount - 5}, {Name: "Bob"}},
		Pot:     MaxAmount - 5,
		Round:   1,
		Started: true,
	}
	require.NoError(t, Validate(nearLimit))

	tests := []struct {
		name string
		op   func(State) (State, error)
	}{
		{"lose", func(s State) (State, error) { return PlayerLoses(s, 10) }},
		{"win", func(s State) (State, error) { return PlayerWins(s, 10) }},
		{"new round", func(s State) (State, error) {
			s = s.Clone()
			s.Players[0].Contributed = MaxAmount
			s.Pot = MaxAmount
			return StartNewRound(s)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.op(nearLimit)
			require.ErrorIs(t, err, ErrAmountTooLarge)
			assert.Equal(t, "amount_too_large", Code(err))
			assert.GreaterOrEqual(t, got.Pot, 0)
			assert.NoError(t, Validate(got), "rejected transitions leave a valid state")
		})
	}

	t.Run("small bets still apply", func(t *testing.T) {
		t.Parallel()
		got, err := PlayerLoses(nearLimit, 1)
		require.NoError(t, err)
		assert.Equal(t, MaxAmount-2, got.Pot)
		assert.NoError(t, Validate(got))
	})
}

func TestReset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultState(), Reset())
	assert.Equal(t, Setup, Reset().Phase())
	assert.NoError(t, Validate(Reset()))
}

func TestParseBet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "10", want: 10},
		{in: " 3 ", want: 3},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBet(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConservationUnderRandomPlay(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 50; game++ {
		s := DefaultState()
		players := 2 + rng.Intn(5)
		for i := 0; i < players; i++ {
			s, _ = AddPlayer(s, "p")
		}
		s, err := StartGame(s)
		require.NoError(t, err)

		for step := 0; step < 200; step++ {
			bet := rng.Intn(s.Pot+3) - 1 // includes invalid and oversized bets
			var next State
			switch rng.Intn(3) {
			case 0:
				next, err = StartNewRound(s)
			case 1:
				next, err = PlayerWins(s, bet)
			default:
				next, err = PlayerLoses(s, bet)
			}
			if err != nil {
				require.True(t, next.Equal(s), "rejected transition changed state")
				continue
			}
			require.NoError(t, Validate(next), "game %d step %d", game, step)
			require.Equal(t, next.TotalContributed()-next.TotalWithdrawn(), next.Pot)
			s = next
		}
	}
}
