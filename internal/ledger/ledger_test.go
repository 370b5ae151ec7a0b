package ledger

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/potgame/internal/pot"
)

func sampleGame(t *testing.T) pot.State {
	t.Helper()
	// Alice loses 2, Bob wins 3.
	s, err := pot.Replay(pot.DefaultState(), []pot.Event{
		{Kind: pot.EventAddPlayer, Name: "Alice"},
		{Kind: pot.EventAddPlayer, Name: "Bob"},
		{Kind: pot.EventStartGame},
		{Kind: pot.EventLose, Bet: 2},
		{Kind: pot.EventWin, Bet: 3},
	})
	require.NoError(t, err)
	return s
}

func TestStandings(t *testing.T) {
	t.Parallel()

	got := Standings(sampleGame(t))
	want := []Standing{
		{Seat: 0, Name: "Alice", Contributed: 4, Withdrawn: 0, Balance: -4, Dealer: false, Turn: false},
		{Seat: 1, Name: "Bob", Contributed: 5, Withdrawn: 6, Balance: 1, Dealer: true, Turn: true},
	}
	assert.Equal(t, want, got)

	setup := Standings(pot.State{Players: []pot.Player{{Name: "Alice"}}, Round: 1})
	require.Len(t, setup, 1)
	assert.False(t, setup[0].Dealer, "no badges before the game starts")
}

func TestLeaders(t *testing.T) {
	t.Parallel()

	got := Leaders(sampleGame(t))
	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got[0].Name)
	assert.Equal(t, "Alice", got[1].Name)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	sum := Summarize(sampleGame(t))
	assert.Equal(t, "active", sum.Phase)
	assert.Equal(t, 3, sum.Pot)
	assert.Equal(t, 2, sum.Players)
	assert.InDelta(t, -1.5, sum.MeanBalance, 1e-9)
	assert.InDelta(t, 2.5, sum.Spread, 1e-9)

	empty := Summarize(pot.DefaultState())
	assert.Equal(t, "setup", empty.Phase)
	assert.Zero(t, empty.Spread)
}

func TestEncodeTOML(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	require.NoError(t, EncodeTOML(&buf, sampleGame(t), "£"))

	var report Report
	_, err := toml.Decode(buf.String(), &report)
	require.NoError(t, err)
	assert.Equal(t, "£", report.Currency)
	assert.Equal(t, 3, report.Summary.Pot)
	require.Len(t, report.Players, 2)
	assert.Equal(t, "Bob", report.Players[1].Name)
	assert.True(t, report.Players[1].Dealer)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "£5", FormatAmount("£", 5))
	assert.Equal(t, "-£5", FormatAmount("£", -5))
	assert.Equal(t, "+£5", FormatBalance("£", 5))
	assert.Equal(t, "-£5", FormatBalance("£", -5))
	assert.Equal(t, "£0", FormatBalance("£", 0))
}
