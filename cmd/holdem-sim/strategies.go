package main

import (
	"math/rand/v2"

	"github.com/lox/holdem-engine/engine"
	"github.com/lox/holdem-engine/poker"
)

// buildStrategy maps a config strategy name to a decision function. The rng
// belongs to the table's goroutine, so strategies can use it without locking.
func buildStrategy(name string, rng *rand.Rand) engine.AIStrategy {
	switch name {
	case "call":
		return engine.StrategyFunc(callStrategy)
	case "rand":
		return randStrategy(rng)
	case "raise":
		return engine.StrategyFunc(raiseStrategy)
	case "chart":
		return engine.StrategyFunc(chartStrategy)
	default:
		return nil
	}
}

// owed returns how much the player must add to stay in the hand.
func owed(view *engine.Snapshot, playerID string) (*engine.PlayerState, int) {
	me := view.State.Player(playerID)
	return me, view.State.CurrentBet - me.CurrentBet
}

// minRaiseAction raises by the smallest legal increment, falling back to a
// call when the stack cannot cover more than the call itself.
func minRaiseAction(view *engine.Snapshot, playerID string) engine.PlayerAction {
	me, need := owed(view, playerID)
	if me.Chips <= need {
		return engine.Call()
	}
	target := view.State.CurrentBet + view.State.MinRaise
	if me.Chips+me.CurrentBet < target {
		return engine.AllIn()
	}
	return engine.Raise(target)
}

// callStrategy matches any bet and checks otherwise.
func callStrategy(view *engine.Snapshot, playerID string) engine.PlayerAction {
	return engine.Call()
}

// randStrategy picks a uniformly random legal action.
func randStrategy(rng *rand.Rand) engine.AIStrategy {
	return engine.StrategyFunc(func(view *engine.Snapshot, playerID string) engine.PlayerAction {
		_, need := owed(view, playerID)
		if need > 0 {
			switch rng.IntN(3) {
			case 0:
				return engine.Fold()
			case 1:
				return engine.Call()
			default:
				return minRaiseAction(view, playerID)
			}
		}
		if rng.IntN(2) == 0 {
			return engine.Call()
		}
		return minRaiseAction(view, playerID)
	})
}

// raiseStrategy applies maximum pressure: the minimum raise every turn until
// the stack runs out.
func raiseStrategy(view *engine.Snapshot, playerID string) engine.PlayerAction {
	return minRaiseAction(view, playerID)
}

// chartStrategy plays a simple pre-flop chart and check-calls after the flop.
func chartStrategy(view *engine.Snapshot, playerID string) engine.PlayerAction {
	if view.State.CurrentPhase != engine.PhasePreFlop {
		return engine.Call()
	}

	me, need := owed(view, playerID)
	if len(me.HoleCards) != 2 {
		return engine.Call()
	}

	switch poker.CategorizeHoleCards(me.HoleCards[0], me.HoleCards[1]) {
	case poker.CategoryPremium, poker.CategoryStrong:
		return minRaiseAction(view, playerID)
	case poker.CategoryMedium:
		return engine.Call()
	case poker.CategoryWeak:
		if need <= view.State.BigBlind {
			return engine.Call()
		}
		return engine.Fold()
	default:
		if need == 0 {
			return engine.Call()
		}
		return engine.Fold()
	}
}
