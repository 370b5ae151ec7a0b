package pot

import (
	"math"
	"slices"
	"strings"
)

// Ante is what every player owes the pot when the game or a round starts.
const Ante = 1

// MinPlayers is the smallest table that can start a game.
const MinPlayers = 2

// MaxAmount bounds the pot and every ledger entry. Transitions that would
// pass it are rejected, which keeps all sums clear of integer overflow.
const MaxAmount = math.MaxInt32

// Player is one line of the ledger.
type Player struct {
	Name        string `json:"name"`
	Contributed int    `json:"contributed"` // Total put into the pot
	Withdrawn   int    `json:"withdrawn"`   // Total taken out of the pot
}

// Balance returns the player's net profit (negative for a loss).
func (p Player) Balance() int {
	return p.Withdrawn - p.Contributed
}

// State is a complete snapshot of a game.
type State struct {
	Players     []Player `json:"players"`
	DealerIndex int      `json:"dealerIndex"`
	CurrentTurn int      `json:"currentTurn"`
	Pot         int      `json:"pot"`
	Round       int      `json:"round"`
	Started     bool     `json:"started"`
}

// Phase is the macro state of a game.
type Phase int

const (
	Setup Phase = iota
	Active
)

func (p Phase) String() string {
	if p == Active {
		return "active"
	}
	return "setup"
}

// DefaultState returns an empty game in Setup.
func DefaultState() State {
	return State{
		Players: []Player{},
		Round:   1,
	}
}

// Phase reports whether the game is still being set up.
func (s State) Phase() Phase {
	if s.Started {
		return Active
	}
	return Setup
}

// CurrentPlayer returns the player whose turn it is.
func (s State) CurrentPlayer() (Player, bool) {
	return s.player(s.CurrentTurn)
}

// Dealer returns the current dealer.
func (s State) Dealer() (Player, bool) {
	return s.player(s.DealerIndex)
}

func (s State) player(i int) (Player, bool) {
	if i < 0 || i >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[i], true
}

// MaxBet is the largest bet that can currently be placed.
func (s State) MaxBet() int {
	return s.Pot
}

// TotalContributed sums every player's contributions.
func (s State) TotalContributed() int {
	total := 0
	for _, p := range s.Players {
		total += p.Contributed
	}
	return total
}

// TotalWithdrawn sums every player's withdrawals.
func (s State) TotalWithdrawn() int {
	total := 0
	for _, p := range s.Players {
		total += p.Withdrawn
	}
	return total
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Players = slices.Clone(s.Players)
	if c.Players == nil {
		c.Players = []Player{}
	}
	return c
}

// Equal reports whether two snapshots hold the same values.
func (s State) Equal(o State) bool {
	return s.DealerIndex == o.DealerIndex &&
		s.CurrentTurn == o.CurrentTurn &&
		s.Pot == o.Pot &&
		s.Round == o.Round &&
		s.Started == o.Started &&
		slices.Equal(s.Players, o.Players)
}

// Validate checks the invariants every reachable snapshot satisfies.
func Validate(s State) error {
	n := len(s.Players)
	if s.Started && n < MinPlayers {
		return invalid("started with %d players", n)
	}
	if s.Round < 1 {
		return invalid("round %d", s.Round)
	}
	if s.Pot < 0 {
		return invalid("negative pot %d", s.Pot)
	}
	if s.Pot > MaxAmount {
		return invalid("pot %d above %d", s.Pot, MaxAmount)
	}
	if n > 0 {
		if s.DealerIndex < 0 || s.DealerIndex >= n {
			return invalid("dealer index %d out of range", s.DealerIndex)
		}
		if s.CurrentTurn < 0 || s.CurrentTurn >= n {
			return invalid("current turn %d out of range", s.CurrentTurn)
		}
	} else if s.DealerIndex != 0 || s.CurrentTurn != 0 {
		return invalid("indexes set without players")
	}
	for i, p := range s.Players {
		if strings.TrimSpace(p.Name) == "" {
			return invalid("player %d has no name", i)
		}
		if p.Contributed < 0 || p.Withdrawn < 0 {
			return invalid("player %q has a negative ledger", p.Name)
		}
		if p.Contributed > MaxAmount || p.Withdrawn > MaxAmount {
			return invalid("player %q has a ledger above %d", p.Name, MaxAmount)
		}
	}
	contributed, ok := sumLedger(s.Players, func(p Player) int { return p.Contributed })
	if !ok {
		return invalid("total contributed overflows")
	}
	withdrawn, ok := sumLedger(s.Players, func(p Player) int { return p.Withdrawn })
	if !ok {
		return invalid("total withdrawn overflows")
	}
	if got := contributed - withdrawn; got != s.Pot {
		return invalid("pot %d does not match ledger %d", s.Pot, got)
	}
	return nil
}

// sumLedger adds one non-negative field over players, reporting false if
// the total would overflow.
func sumLedger(players []Player, field func(Player) int) (int, bool) {
	total := 0
	for _, p := range players {
		v := field(p)
		if v > math.MaxInt-total {
			return 0, false
		}
		total += v
	}
	return total, true
}
