package engine

import (
	"sort"

	"github.com/lox/holdem-engine/poker"
)

// SidePot is one pot tier. Eligible holds the ids of players who can win
// it, in seat order. The first pot is the main pot.
type SidePot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// PotResult is the decomposition of all hand contributions into pots plus
// any uncontested chips returned to their contributor.
type PotResult struct {
	Pots     []SidePot
	Returned map[string]int
}

// TotalAmount sums pot amounts and returned chips.
func (r PotResult) TotalAmount() int {
	total := 0
	for _, pot := range r.Pots {
		total += pot.Amount
	}
	for _, amount := range r.Returned {
		total += amount
	}
	return total
}

// calculateSidePots decomposes per-player hand contributions into pot
// tiers. Levels are the distinct contribution totals in ascending order;
// each tier collects its slice of every contribution at or above it. A top
// tier with a single contributor is returned to that player uncontested.
// Folded players contribute to amounts but are never eligible.
func calculateSidePots(ctx *GameContext) PotResult {
	type contribution struct {
		player *PlayerState
		amount int
	}

	var contribs []contribution
	for _, p := range ctx.Players {
		if p.TotalBetThisHand > 0 {
			contribs = append(contribs, contribution{player: p, amount: p.TotalBetThisHand})
		}
	}

	result := PotResult{Returned: make(map[string]int)}
	if len(contribs) == 0 {
		return result
	}

	levelSet := make(map[int]bool)
	for _, c := range contribs {
		levelSet[c.amount] = true
	}
	levels := make([]int, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	previous := 0
	for _, level := range levels {
		var contributors []contribution
		for _, c := range contribs {
			if c.amount >= level {
				contributors = append(contributors, c)
			}
		}

		delta := level - previous
		if len(contributors) == 1 {
			// Nobody matched this slice of the bet; hand it back.
			result.Returned[contributors[0].player.ID] += delta
			previous = level
			continue
		}

		pot := SidePot{Amount: delta * len(contributors)}
		for _, c := range contributors {
			if c.player.Status != StatusFolded {
				pot.Eligible = append(pot.Eligible, c.player.ID)
			}
		}
		result.Pots = append(result.Pots, pot)
		previous = level
	}

	return result
}

// validateSidePots asserts that the decomposition conserves every
// contributed chip and that eligibility never exceeds the contributors.
func validateSidePots(ctx *GameContext, result PotResult) error {
	contributed := 0
	contributors := make(map[string]bool)
	for _, p := range ctx.Players {
		contributed += p.TotalBetThisHand
		if p.TotalBetThisHand > 0 {
			contributors[p.ID] = true
		}
	}

	if got := result.TotalAmount(); got != contributed {
		return newError(CodeInvariantViolation,
			"side pots account for %d of %d contributed chips", got, contributed)
	}
	for i, pot := range result.Pots {
		for _, id := range pot.Eligible {
			if !contributors[id] {
				return newError(CodeInvariantViolation,
					"pot %d eligible player %s never contributed", i, id)
			}
		}
	}
	return nil
}

// potWinners picks the winning player ids for one pot by hand strength.
// Eligible ids are expected in seat order; ties return every tied id.
func potWinners(ctx *GameContext, eval Evaluator, pot SidePot) ([]string, poker.HandResult, error) {
	eligible := pot.Eligible
	if len(eligible) == 0 {
		// Defensive: everyone in this tier folded. The chips go to the
		// players still in the hand rather than vanishing.
		for _, p := range ctx.InHandPlayers() {
			eligible = append(eligible, p.ID)
		}
		if len(eligible) == 0 {
			return nil, poker.HandResult{}, newError(CodeStateCorruption, "pot with no eligible players and no hand in progress")
		}
	}

	if len(eligible) == 1 {
		return eligible, poker.HandResult{}, nil
	}

	var winners []string
	var best poker.HandResult
	haveBest := false
	for _, id := range eligible {
		p := ctx.Player(id)
		if p == nil || len(p.HoleCards) != 2 {
			return nil, poker.HandResult{}, newError(CodeStateCorruption,
				"eligible player %s has no hole cards at showdown", id)
		}
		result, err := eval.Evaluate(p.HoleCards, ctx.CommunityCards)
		if err != nil {
			return nil, poker.HandResult{}, wrapError(CodeStateCorruption, err, "evaluating %s at showdown", id)
		}
		switch {
		case !haveBest:
			best = result
			winners = []string{id}
			haveBest = true
		default:
			switch eval.Compare(result, best) {
			case 1:
				best = result
				winners = []string{id}
			case 0:
				winners = append(winners, id)
			}
		}
	}
	return winners, best, nil
}

// distributePots awards every pot to its winners, returns uncontested
// chips, and records the award breakdown on the context. Called from
// showdown entry; chips land immediately.
func distributePots(ctx *GameContext, eval Evaluator, result PotResult) ([]Event, error) {
	var events []Event

	for i, pot := range result.Pots {
		winners, best, err := potWinners(ctx, eval, pot)
		if err != nil {
			return nil, err
		}

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)

		// Remainder chips go to the earliest winners in seat order.
		sort.Slice(winners, func(a, b int) bool {
			return ctx.PlayerIndex(winners[a]) < ctx.PlayerIndex(winners[b])
		})

		for w, id := range winners {
			amount := share
			if w < remainder {
				amount++
			}
			if amount == 0 {
				continue
			}
			p := ctx.Player(id)
			p.Chips += amount
			ctx.PotTotal -= amount

			description := "uncontested"
			if len(pot.Eligible) > 1 {
				description = best.Describe()
			}
			ctx.Winners = append(ctx.Winners, WinnerAward{
				PlayerID:        id,
				Amount:          amount,
				PotIndex:        i,
				HandDescription: description,
			})
			events = append(events, newPlayerEvent(EventPotUpdated, ctx.CurrentPhase, id, map[string]any{
				"awarded":   amount,
				"pot_index": i,
				"hand":      description,
			}))
		}
	}

	// Seat order keeps the event stream deterministic.
	for _, p := range ctx.Players {
		amount, ok := result.Returned[p.ID]
		if !ok || amount == 0 {
			continue
		}
		p.Chips += amount
		ctx.PotTotal -= amount
		events = append(events, newPlayerEvent(EventPotUpdated, ctx.CurrentPhase, p.ID, map[string]any{
			"returned": amount,
		}))
	}

	if ctx.PotTotal != 0 {
		return nil, newError(CodeInvariantViolation,
			"pot holds %d chips after distribution", ctx.PotTotal)
	}
	return events, nil
}
