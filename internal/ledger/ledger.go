// Package ledger turns a pot game snapshot into standings and reports.
package ledger

import (
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/potgame/internal/pot"
)

// Standing is one player's position in the game.
type Standing struct {
	Seat        int    `toml:"seat" json:"seat"`
	Name        string `toml:"name" json:"name"`
	Contributed int    `toml:"contributed" json:"contributed"`
	Withdrawn   int    `toml:"withdrawn" json:"withdrawn"`
	Balance     int    `toml:"balance" json:"balance"`
	Dealer      bool   `toml:"dealer" json:"dealer"`
	Turn        bool   `toml:"turn" json:"turn"`
}

// Summary describes the game as a whole.
type Summary struct {
	Phase       string  `toml:"phase" json:"phase"`
	Round       int     `toml:"round" json:"round"`
	Pot         int     `toml:"pot" json:"pot"`
	Players     int     `toml:"players" json:"players"`
	MeanBalance float64 `toml:"mean_balance" json:"mean_balance"`
	Spread      float64 `toml:"spread" json:"spread"` // Standard deviation of balances
}

// Standings lists players in seat order.
func Standings(s pot.State) []Standing {
	out := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		out[i] = Standing{
			Seat:        i,
			Name:        p.Name,
			Contributed: p.Contributed,
			Withdrawn:   p.Withdrawn,
			Balance:     p.Balance(),
			Dealer:      s.Started && i == s.DealerIndex,
			Turn:        s.Started && i == s.CurrentTurn,
		}
	}
	return out
}

// Leaders lists players from the biggest winner down. Ties keep seat order.
func Leaders(s pot.State) []Standing {
	out := Standings(s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance > out[j].Balance
	})
	return out
}

// Summarize computes game wide figures.
func Summarize(s pot.State) Summary {
	sum := Summary{
		Phase:   s.Phase().String(),
		Round:   s.Round,
		Pot:     s.Pot,
		Players: len(s.Players),
	}
	if len(s.Players) == 0 {
		return sum
	}
	balances := make([]float64, len(s.Players))
	for i, p := range s.Players {
		balances[i] = float64(p.Balance())
	}
	sum.MeanBalance, sum.Spread = stat.PopMeanStdDev(balances, nil)
	return sum
}

// Report is the exported form of a game.
type Report struct {
	Currency string     `toml:"currency" json:"currency"`
	Summary  Summary    `toml:"summary" json:"summary"`
	Players  []Standing `toml:"players" json:"players"`
}

// EncodeTOML writes the standings and summary of s as TOML.
func EncodeTOML(w io.Writer, s pot.State, currency string) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	if err := enc.Encode(Report{
		Currency: currency,
		Summary:  Summarize(s),
		Players:  Standings(s),
	}); err != nil {
		return fmt.Errorf("ledger: failed to encode report: %w", err)
	}
	return nil
}

// FormatAmount renders a pot or ledger amount.
func FormatAmount(currency string, amount int) string {
	if amount < 0 {
		return fmt.Sprintf("-%s%d", currency, -amount)
	}
	return fmt.Sprintf("%s%d", currency, amount)
}

// FormatBalance renders a balance with a leading + for profit.
func FormatBalance(currency string, balance int) string {
	if balance > 0 {
		return "+" + FormatAmount(currency, balance)
	}
	return FormatAmount(currency, balance)
}
