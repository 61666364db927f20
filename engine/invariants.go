package engine

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-engine/poker"
)

// Pure validators over a GameContext. None of them mutate the context.
// The atomic command wrapper runs ValidateContext after every mutation;
// street entry effects additionally run ValidatePotConsistency.

// ValidatePotConsistency asserts the pot equals the sum of hand
// contributions. Skipped in Showdown and Finished, where the award has
// moved pot chips back to stacks before bets are reset.
func ValidatePotConsistency(ctx *GameContext) error {
	if ctx.CurrentPhase == PhaseShowdown || ctx.CurrentPhase == PhaseFinished {
		return nil
	}

	sum := 0
	for _, p := range ctx.Players {
		sum += p.TotalBetThisHand
	}
	if ctx.PotTotal == sum {
		return nil
	}

	var detail strings.Builder
	for _, p := range ctx.Players {
		fmt.Fprintf(&detail, " %s(bet=%d,total=%d,chips=%d)", p.ID, p.CurrentBet, p.TotalBetThisHand, p.Chips)
	}
	return newError(CodeInvariantViolation,
		"pot %d does not match contributions %d in %s:%s", ctx.PotTotal, sum, ctx.CurrentPhase, detail.String())
}

// ValidatePlayerBetConsistency asserts one player's bet fields are
// internally coherent.
func ValidatePlayerBetConsistency(ctx *GameContext, playerID string) error {
	p := ctx.Player(playerID)
	if p == nil {
		return newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	if p.CurrentBet < 0 || p.TotalBetThisHand < 0 || p.Chips < 0 {
		return newError(CodeInvariantViolation,
			"player %s has negative amounts: bet=%d total=%d chips=%d",
			p.ID, p.CurrentBet, p.TotalBetThisHand, p.Chips)
	}
	if p.CurrentBet > p.TotalBetThisHand {
		return newError(CodeInvariantViolation,
			"player %s street bet %d exceeds hand total %d", p.ID, p.CurrentBet, p.TotalBetThisHand)
	}
	if p.AllIn && p.Chips != 0 {
		return newError(CodeInvariantViolation,
			"player %s flagged all-in with %d chips behind", p.ID, p.Chips)
	}
	return nil
}

// ValidateBettingAction pre-checks an action's context legality without
// applying it. Used by handlers and by available-action queries.
func ValidateBettingAction(ctx *GameContext, playerID string, actionType ActionType, amount int) error {
	p := ctx.Player(playerID)
	if p == nil {
		return newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	if !p.Actionable() {
		return newError(CodeIllegalAction, "player %s cannot act with status %s", p.ID, p.Status)
	}

	switch actionType {
	case ActionCheck:
		if need := betNeed(ctx, p); need > 0 {
			return newError(CodeIllegalAction, "cannot check facing a bet, %d to call", need)
		}
	case ActionRaise:
		if amount <= ctx.CurrentBet {
			return newError(CodeIllegalAction, "raise to %d does not exceed current bet %d", amount, ctx.CurrentBet)
		}
		stackTotal := p.Chips + p.CurrentBet
		if stackTotal <= ctx.CurrentBet {
			return newError(CodeInsufficientChips, "stack of %d cannot raise above current bet %d", stackTotal, ctx.CurrentBet)
		}
		if amount < ctx.CurrentBet+ctx.MinRaise && amount < stackTotal {
			return newError(CodeIllegalAction, "raise to %d below minimum %d", amount, ctx.CurrentBet+ctx.MinRaise)
		}
	case ActionAllIn:
		if p.Chips == 0 {
			return newError(CodeIllegalAction, "player %s has no chips to move all-in", p.ID)
		}
	}
	return nil
}

// ValidateChipConservation asserts chips behind plus pot equal the
// recorded initial total.
func ValidateChipConservation(ctx *GameContext, initialTotal int) error {
	if got := ctx.TotalChips(); got != initialTotal {
		return newError(CodeInvariantViolation,
			"chip total %d diverged from initial %d in %s", got, initialTotal, ctx.CurrentPhase)
	}
	return nil
}

// validateNonNegative asserts no chip count, bet, or pot is negative.
func validateNonNegative(ctx *GameContext) error {
	if ctx.PotTotal < 0 {
		return newError(CodeInvariantViolation, "negative pot %d", ctx.PotTotal)
	}
	if ctx.CurrentBet < 0 {
		return newError(CodeInvariantViolation, "negative current bet %d", ctx.CurrentBet)
	}
	for _, p := range ctx.Players {
		if p.Chips < 0 || p.CurrentBet < 0 || p.TotalBetThisHand < 0 {
			return newError(CodeInvariantViolation,
				"player %s has negative amounts: chips=%d bet=%d total=%d",
				p.ID, p.Chips, p.CurrentBet, p.TotalBetThisHand)
		}
	}
	return nil
}

// validateActivePlayer asserts the active player reference, when set,
// names an actionable player.
func validateActivePlayer(ctx *GameContext) error {
	if ctx.ActivePlayerID == "" {
		return nil
	}
	p := ctx.Player(ctx.ActivePlayerID)
	if p == nil {
		return newError(CodeInvariantViolation, "active player %s not seated", ctx.ActivePlayerID)
	}
	if !p.Actionable() {
		return newError(CodeInvariantViolation,
			"active player %s is not actionable (status=%s chips=%d active=%t)",
			p.ID, p.Status, p.Chips, p.Active)
	}
	return nil
}

// validateDeckDiscipline asserts the undealt deck, hole cards, and board
// cover exactly 52 distinct cards with no overlap. Only meaningful while a
// deck is in play.
func validateDeckDiscipline(ctx *GameContext) error {
	if ctx.Deck == nil {
		return nil
	}

	remaining := ctx.Deck.RemainingCards()
	var dealt poker.Hand
	count := remaining.CountCards()

	add := func(c poker.Card, where string) error {
		if !c.Valid() {
			return newError(CodeInvariantViolation, "invalid card in %s", where)
		}
		if remaining.HasCard(c) {
			return newError(CodeInvariantViolation, "card %s in %s still sits in the deck", c, where)
		}
		if dealt.HasCard(c) {
			return newError(CodeInvariantViolation, "card %s appears twice across hands and board", c)
		}
		dealt.AddCard(c)
		return nil
	}

	for _, p := range ctx.Players {
		for _, c := range p.HoleCards {
			if err := add(c, "hole cards of "+p.ID); err != nil {
				return err
			}
		}
	}
	for _, c := range ctx.CommunityCards {
		if err := add(c, "community cards"); err != nil {
			return err
		}
	}

	count += dealt.CountCards()
	if count != 52 {
		return newError(CodeInvariantViolation,
			"deck discipline broken: %d distinct cards across deck, hands, and board", count)
	}
	return nil
}

// ValidateContext is the composite check the atomic wrapper runs after
// every mutation: pot consistency, non-negativity, active-player validity,
// deck discipline, and chip conservation against the recorded total.
func ValidateContext(ctx *GameContext) error {
	if err := validateNonNegative(ctx); err != nil {
		return err
	}
	if err := ValidatePotConsistency(ctx); err != nil {
		return err
	}
	if err := validateActivePlayer(ctx); err != nil {
		return err
	}
	if err := validateDeckDiscipline(ctx); err != nil {
		return err
	}
	if ctx.StartingTotal > 0 {
		if err := ValidateChipConservation(ctx, ctx.StartingTotal); err != nil {
			return err
		}
	}
	return nil
}
