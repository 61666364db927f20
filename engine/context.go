package engine

import (
	"github.com/lox/holdem-engine/poker"
)

// WinnerAward records one pot award at the end of a hand.
type WinnerAward struct {
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
	PotIndex int    `json:"pot_index"`
	// HandDescription is the readable rank for showdown wins, or
	// "win by fold" when everyone else folded.
	HandDescription string `json:"hand_description,omitempty"`
}

// GameContext is the complete state of one game session. It is mutated only
// by the command service through phase handlers; everything else sees deep
// copies via snapshots.
type GameContext struct {
	GameID         string         `json:"game_id"`
	CurrentPhase   GamePhase      `json:"current_phase"`
	Players        []*PlayerState `json:"players"`
	CommunityCards []poker.Card   `json:"community_cards,omitempty"`
	PotTotal       int            `json:"pot_total"`
	CurrentBet     int            `json:"current_bet"`
	// MinRaise is the raise increment required on top of CurrentBet,
	// initialized to the big blind at each street and bumped to the last
	// full raise size.
	MinRaise       int    `json:"min_raise"`
	ActivePlayerID string `json:"active_player_id,omitempty"`
	SmallBlind     int    `json:"small_blind"`
	BigBlind       int    `json:"big_blind"`
	HandNumber     int    `json:"hand_number"`
	// StartingTotal anchors chip conservation: sum of chips and pot must
	// equal it at every at-rest point.
	StartingTotal    int             `json:"starting_total"`
	ShowdownComplete bool            `json:"showdown_complete,omitempty"`
	Winners          []WinnerAward   `json:"winners,omitempty"`
	Deck             *poker.Deck     `json:"deck,omitempty"`
	Seed             int64           `json:"seed"`
	ActedSinceRaise  map[string]bool `json:"acted_since_raise,omitempty"`
}

// Player returns the player with the given id, or nil.
func (ctx *GameContext) Player(id string) *PlayerState {
	for _, p := range ctx.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the seat index of the given id, or -1.
func (ctx *GameContext) PlayerIndex(id string) int {
	for i, p := range ctx.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ActivePlayer returns the player whose turn it is, or nil.
func (ctx *GameContext) ActivePlayer() *PlayerState {
	if ctx.ActivePlayerID == "" {
		return nil
	}
	return ctx.Player(ctx.ActivePlayerID)
}

// CountActionable returns how many players can still be asked to act.
func (ctx *GameContext) CountActionable() int {
	n := 0
	for _, p := range ctx.Players {
		if p.Actionable() {
			n++
		}
	}
	return n
}

// CountInHand returns how many players still contest the pot.
func (ctx *GameContext) CountInHand() int {
	n := 0
	for _, p := range ctx.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// InHandPlayers returns the players contesting the pot, in seat order.
func (ctx *GameContext) InHandPlayers() []*PlayerState {
	var out []*PlayerState
	for _, p := range ctx.Players {
		if p.InHand() {
			out = append(out, p)
		}
	}
	return out
}

// TotalChips returns chips behind plus the pot.
func (ctx *GameContext) TotalChips() int {
	total := ctx.PotTotal
	for _, p := range ctx.Players {
		total += p.Chips
	}
	return total
}

// advanceActivePlayer scans from the seat after fromIndex, wrapping once,
// and assigns the first actionable player in a single write. Assigns empty
// when nobody can act.
func (ctx *GameContext) advanceActivePlayer(fromIndex int) {
	n := len(ctx.Players)
	for i := 1; i <= n; i++ {
		p := ctx.Players[(fromIndex+i)%n]
		if p.Actionable() {
			ctx.ActivePlayerID = p.ID
			return
		}
	}
	ctx.ActivePlayerID = ""
}

// setFirstToAct assigns the opening seat for the current street: seat 2
// preflop with three or more players (after the big blind), seat 0
// otherwise. Scans forward for the first actionable seat from there.
func (ctx *GameContext) setFirstToAct() {
	start := 0
	if ctx.CurrentPhase == PhasePreFlop && len(ctx.Players) >= 3 {
		start = 2
	}
	ctx.advanceActivePlayer(start - 1)
}

// resetBettingRound collapses street-local betting state. Total
// contributions stay intact for side-pot math.
func (ctx *GameContext) resetBettingRound() {
	ctx.CurrentBet = 0
	ctx.MinRaise = ctx.BigBlind
	for _, p := range ctx.Players {
		p.CurrentBet = 0
	}
	ctx.ActedSinceRaise = make(map[string]bool)
}

// Clone returns a deep copy sharing nothing mutable with the original. The
// deck clone shares the RNG stream; a hand never reshuffles mid-flight.
func (ctx *GameContext) Clone() *GameContext {
	clone := *ctx

	clone.Players = make([]*PlayerState, len(ctx.Players))
	for i, p := range ctx.Players {
		clone.Players[i] = p.Clone()
	}

	if ctx.CommunityCards != nil {
		clone.CommunityCards = make([]poker.Card, len(ctx.CommunityCards))
		copy(clone.CommunityCards, ctx.CommunityCards)
	}

	if ctx.Winners != nil {
		clone.Winners = make([]WinnerAward, len(ctx.Winners))
		copy(clone.Winners, ctx.Winners)
	}

	if ctx.Deck != nil {
		clone.Deck = ctx.Deck.Clone()
	}

	if ctx.ActedSinceRaise != nil {
		clone.ActedSinceRaise = make(map[string]bool, len(ctx.ActedSinceRaise))
		for k, v := range ctx.ActedSinceRaise {
			clone.ActedSinceRaise[k] = v
		}
	}

	return &clone
}

// restoreFrom replaces every field in place from a baseline clone, so
// references to the context held elsewhere stay valid across a rollback.
// The baseline must be a private deep copy; it is consumed by this call.
func (ctx *GameContext) restoreFrom(baseline *GameContext) {
	*ctx = *baseline
}
