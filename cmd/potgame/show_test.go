package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/potgame/internal/ledger"
	"github.com/lox/potgame/internal/pot"
)

func sampleState(t *testing.T) pot.State {
	t.Helper()
	s, err := pot.Replay(pot.DefaultState(), []pot.Event{
		{Kind: pot.EventAddPlayer, Name: "Alice"},
		{Kind: pot.EventAddPlayer, Name: "Bob"},
		{Kind: pot.EventStartGame},
		{Kind: pot.EventLose, Bet: 2},
	})
	require.NoError(t, err)
	return s
}

func TestWriteReport(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	s := sampleState(t)

	t.Run("text", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeReport(&b, s, "£", "text"))
		assert.Contains(t, b.String(), "Pot: £6")
		assert.Contains(t, b.String(), "Leader: Bob (-£2)")
	})

	t.Run("text before the game starts", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeReport(&b, pot.DefaultState(), "£", "text"))
		assert.NotContains(t, b.String(), "Leader")
	})

	t.Run("json", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeReport(&b, s, "$", "json"))
		var report ledger.Report
		require.NoError(t, json.Unmarshal([]byte(b.String()), &report))
		assert.Equal(t, "$", report.Currency)
		assert.Equal(t, 6, report.Summary.Pot)
		require.Len(t, report.Players, 2)
		assert.Equal(t, -4, report.Players[0].Balance)
	})

	t.Run("toml", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeReport(&b, s, "£", "toml"))
		var report ledger.Report
		_, err := toml.Decode(b.String(), &report)
		require.NoError(t, err)
		assert.Equal(t, "active", report.Summary.Phase)
	})
}

func TestGlobalsLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := Globals{
		Config:    filepath.Join(dir, "missing.hcl"),
		LogLevel:  "debug",
		StateFile: filepath.Join(dir, "game.json"),
	}
	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "game.json"), cfg.StateFile)

	g.LogLevel = "loud"
	_, err = g.load()
	assert.Error(t, err)
}
