package engine

// Betting semantics shared by the four betting-phase handlers. Chips move
// into the pot immediately as they are bet, so pot consistency holds at
// every at-rest point of a street.

// betNeed is how much the player must add to match the table bet.
func betNeed(ctx *GameContext, p *PlayerState) int {
	return ctx.CurrentBet - p.CurrentBet
}

// commitChips moves n chips from the player's stack into the pot and marks
// the player all-in when the stack empties. n is clamped to the stack.
func commitChips(ctx *GameContext, p *PlayerState, n int) int {
	if n > p.Chips {
		n = p.Chips
	}
	if n <= 0 {
		return 0
	}
	p.Chips -= n
	p.CurrentBet += n
	p.TotalBetThisHand += n
	ctx.PotTotal += n
	if p.Chips == 0 {
		p.AllIn = true
		p.Status = StatusAllIn
	}
	return n
}

// markActed records that the player has acted since the last full raise.
func markActed(ctx *GameContext, p *PlayerState) {
	if ctx.ActedSinceRaise == nil {
		ctx.ActedSinceRaise = make(map[string]bool)
	}
	ctx.ActedSinceRaise[p.ID] = true
}

// reopenBetting clears acted flags after a full raise; everyone must
// respond to the new price. The raiser keeps their flag.
func reopenBetting(ctx *GameContext, raiser *PlayerState) {
	ctx.ActedSinceRaise = map[string]bool{raiser.ID: true}
}

func applyFold(ctx *GameContext, p *PlayerState) []Event {
	p.Status = StatusFolded
	p.Active = false
	p.CurrentBet = 0
	markActed(ctx, p)

	events := []Event{
		newPlayerEvent(EventPlayerFolded, ctx.CurrentPhase, p.ID, nil),
	}

	if ctx.CountInHand() <= 1 {
		events = append(events, NewEvent(EventHandAutoFinish, ctx.CurrentPhase, map[string]any{
			"remaining": ctx.CountInHand(),
		}))
		return events
	}

	if p.ID == ctx.ActivePlayerID {
		ctx.advanceActivePlayer(ctx.PlayerIndex(p.ID))
	}
	return events
}

func applyCheck(ctx *GameContext, p *PlayerState) ([]Event, error) {
	if need := betNeed(ctx, p); need > 0 {
		return nil, newError(CodeIllegalAction, "cannot check facing a bet of %d, %d to call", ctx.CurrentBet, need)
	}
	markActed(ctx, p)
	ctx.advanceActivePlayer(ctx.PlayerIndex(p.ID))
	return []Event{newPlayerEvent(EventPlayerChecked, ctx.CurrentPhase, p.ID, nil)}, nil
}

func applyCall(ctx *GameContext, p *PlayerState) []Event {
	need := betNeed(ctx, p)
	if need <= 0 {
		// Nothing to call converts to a check at the boundary.
		events, _ := applyCheck(ctx, p)
		return events
	}

	paid := commitChips(ctx, p, need)
	markActed(ctx, p)
	ctx.advanceActivePlayer(ctx.PlayerIndex(p.ID))

	events := []Event{
		newPlayerEvent(EventPlayerCalled, ctx.CurrentPhase, p.ID, map[string]any{
			"amount": paid,
		}),
		newPlayerEvent(EventBetPlaced, ctx.CurrentPhase, p.ID, map[string]any{
			"amount":     paid,
			"player_bet": p.CurrentBet,
		}),
		newPotUpdatedEvent(ctx.CurrentPhase, ctx.PotTotal),
	}
	if p.AllIn {
		events = append(events, newPlayerEvent(EventPlayerAllIn, ctx.CurrentPhase, p.ID, map[string]any{
			"amount": p.CurrentBet,
		}))
	}
	return events
}

func applyRaise(ctx *GameContext, p *PlayerState, target int) ([]Event, error) {
	if target <= ctx.CurrentBet {
		return nil, newError(CodeIllegalAction, "raise to %d does not exceed current bet %d", target, ctx.CurrentBet)
	}

	stackTotal := p.Chips + p.CurrentBet
	if stackTotal <= ctx.CurrentBet {
		return nil, newError(CodeInsufficientChips, "stack of %d cannot raise above current bet %d", stackTotal, ctx.CurrentBet)
	}
	if target > stackTotal {
		// Raising beyond the stack commits everything instead.
		target = stackTotal
	}

	minTarget := ctx.CurrentBet + ctx.MinRaise
	if target < minTarget && target < stackTotal {
		return nil, newError(CodeIllegalAction, "raise to %d below minimum %d", target, minTarget)
	}

	return raiseTo(ctx, p, target), nil
}

// raiseTo commits chips up to the target total bet and updates the table
// bet. A full raise re-opens the action; a short all-in does not move the
// minimum nor force players who already acted to respond again.
func raiseTo(ctx *GameContext, p *PlayerState, target int) []Event {
	paid := commitChips(ctx, p, target-p.CurrentBet)
	increment := p.CurrentBet - ctx.CurrentBet
	if increment > 0 {
		if increment >= ctx.MinRaise {
			ctx.MinRaise = increment
			reopenBetting(ctx, p)
		}
		ctx.CurrentBet = p.CurrentBet
	}
	markActed(ctx, p)
	ctx.advanceActivePlayer(ctx.PlayerIndex(p.ID))

	eventType := EventPlayerRaised
	if p.AllIn {
		eventType = EventPlayerAllIn
	}
	return []Event{
		newPlayerEvent(eventType, ctx.CurrentPhase, p.ID, map[string]any{
			"amount":      p.CurrentBet,
			"current_bet": ctx.CurrentBet,
		}),
		newPlayerEvent(EventBetPlaced, ctx.CurrentPhase, p.ID, map[string]any{
			"amount":     paid,
			"player_bet": p.CurrentBet,
		}),
		newPotUpdatedEvent(ctx.CurrentPhase, ctx.PotTotal),
	}
}

func applyAllIn(ctx *GameContext, p *PlayerState) []Event {
	if p.CurrentBet+p.Chips > ctx.CurrentBet {
		return raiseTo(ctx, p, p.CurrentBet+p.Chips)
	}

	// Short stack: the all-in is a call for less.
	paid := commitChips(ctx, p, p.Chips)
	markActed(ctx, p)
	ctx.advanceActivePlayer(ctx.PlayerIndex(p.ID))
	return []Event{
		newPlayerEvent(EventPlayerAllIn, ctx.CurrentPhase, p.ID, map[string]any{
			"amount": p.CurrentBet,
		}),
		newPlayerEvent(EventBetPlaced, ctx.CurrentPhase, p.ID, map[string]any{
			"amount":     paid,
			"player_bet": p.CurrentBet,
		}),
		newPotUpdatedEvent(ctx.CurrentPhase, ctx.PotTotal),
	}
}

// bettingRoundComplete reports whether the street is settled: at most one
// player can act, or every actionable player has matched the table bet and
// acted since the last full raise.
func bettingRoundComplete(ctx *GameContext) bool {
	actionable := 0
	for _, p := range ctx.Players {
		if p.Actionable() {
			actionable++
		}
	}
	if actionable <= 1 {
		// The last actionable player must still match an outstanding bet.
		for _, p := range ctx.Players {
			if p.Actionable() && p.CurrentBet != ctx.CurrentBet {
				return false
			}
		}
		return true
	}

	for _, p := range ctx.Players {
		if !p.Actionable() {
			continue
		}
		if p.CurrentBet != ctx.CurrentBet {
			return false
		}
		if !ctx.ActedSinceRaise[p.ID] {
			return false
		}
	}
	return true
}

// availableActions derives the permitted moves for the player from the
// context alone. Empty when it is not the player's turn or they cannot act.
func availableActions(ctx *GameContext, playerID string) []AvailableAction {
	p := ctx.Player(playerID)
	if p == nil || !ctx.CurrentPhase.Betting() || playerID != ctx.ActivePlayerID || !p.Actionable() {
		return nil
	}

	need := betNeed(ctx, p)
	stackTotal := p.Chips + p.CurrentBet
	actions := []AvailableAction{{Type: ActionFold}}

	if need <= 0 {
		actions = append(actions, AvailableAction{Type: ActionCheck})
	} else {
		callCost := min(need, p.Chips)
		actions = append(actions, AvailableAction{Type: ActionCall, MinAmount: callCost, MaxAmount: callCost})
	}

	if stackTotal > ctx.CurrentBet {
		minTarget := min(ctx.CurrentBet+ctx.MinRaise, stackTotal)
		actions = append(actions, AvailableAction{Type: ActionRaise, MinAmount: minTarget, MaxAmount: stackTotal})
	}

	actions = append(actions, AvailableAction{Type: ActionAllIn, MinAmount: stackTotal, MaxAmount: stackTotal})
	return actions
}
