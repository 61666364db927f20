package engine

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/poker"
)

// handlerDeps carries the collaborators phase handlers need. Handlers
// themselves are stateless; everything mutable lives in the GameContext.
type handlerDeps struct {
	eval   Evaluator
	logger *log.Logger
}

// phaseHandler encapsulates one phase's entry effects and action handling.
type phaseHandler interface {
	Phase() GamePhase
	Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error)
	HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error)
}

func defaultHandlers() map[GamePhase]phaseHandler {
	return map[GamePhase]phaseHandler{
		PhaseInit:     initHandler{},
		PhasePreFlop:  preFlopHandler{},
		PhaseFlop:     streetHandler{phase: PhaseFlop, reveal: 3},
		PhaseTurn:     streetHandler{phase: PhaseTurn, reveal: 1},
		PhaseRiver:    streetHandler{phase: PhaseRiver, reveal: 1},
		PhaseShowdown: showdownHandler{},
		PhaseFinished: finishedHandler{},
	}
}

// rejectAction is the shared response of non-betting phases.
func rejectAction(phase GamePhase, playerID string) ([]Event, error) {
	return nil, newError(CodePhaseError, "player %s cannot act during %s", playerID, phase)
}

// handleBettingAction is the shared dispatcher for the betting phases.
// Turn ownership is validated by the command service before dispatch.
func handleBettingAction(ctx *GameContext, playerID string, action PlayerAction) ([]Event, error) {
	p := ctx.Player(playerID)
	if p == nil {
		return nil, newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	if !p.Actionable() {
		return nil, newError(CodeIllegalAction, "player %s cannot act with status %s", p.ID, p.Status)
	}

	record := newPlayerEvent(EventPlayerActionExecuted, ctx.CurrentPhase, playerID, map[string]any{
		"action": string(action.Type),
		"amount": action.Amount,
	})

	var events []Event
	var err error
	switch action.Type {
	case ActionFold:
		events = applyFold(ctx, p)
	case ActionCheck:
		events, err = applyCheck(ctx, p)
	case ActionCall:
		events = applyCall(ctx, p)
	case ActionRaise:
		events, err = applyRaise(ctx, p, action.Amount)
	case ActionAllIn:
		events = applyAllIn(ctx, p)
	default:
		err = newError(CodeInvalidInput, "unknown action type %q", string(action.Type))
	}
	if err != nil {
		return nil, err
	}
	return append([]Event{record}, events...), nil
}

// initHandler is the idle state between games and after a full reset.
type initHandler struct{}

func (initHandler) Phase() GamePhase { return PhaseInit }

// Enter clears every trace of the previous hand while keeping chips.
func (initHandler) Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error) {
	ctx.CommunityCards = nil
	ctx.PotTotal = 0
	ctx.CurrentBet = 0
	ctx.MinRaise = 0
	ctx.ActivePlayerID = ""
	ctx.ShowdownComplete = false
	ctx.Winners = nil
	ctx.Deck = nil
	ctx.ActedSinceRaise = nil
	for _, p := range ctx.Players {
		p.CurrentBet = 0
		p.TotalBetThisHand = 0
		p.AllIn = false
		p.HoleCards = nil
		if p.Chips > 0 {
			p.Status = StatusActive
			p.Active = true
		} else {
			p.Status = StatusOut
			p.Active = false
		}
	}
	return nil, nil
}

func (initHandler) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	return rejectAction(PhaseInit, playerID)
}

// preFlopHandler opens the hand: cleans prior-hand artefacts, deals hole
// cards, and seats the opener.
type preFlopHandler struct{}

func (preFlopHandler) Phase() GamePhase { return PhasePreFlop }

func (preFlopHandler) Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error) {
	if ctx.Deck == nil {
		return nil, newError(CodeStateCorruption, "no deck at hand start")
	}

	ctx.CommunityCards = nil
	ctx.ShowdownComplete = false
	ctx.Winners = nil
	if ctx.ActedSinceRaise == nil {
		ctx.ActedSinceRaise = make(map[string]bool)
	}

	var dealtTo []string
	for _, p := range ctx.Players {
		p.HoleCards = nil
		if !p.InHand() {
			continue
		}
		cards := ctx.Deck.Deal(2)
		if cards == nil {
			return nil, newError(CodeStateCorruption, "deck exhausted dealing hole cards")
		}
		p.HoleCards = cards
		dealtTo = append(dealtTo, p.ID)
	}
	if len(dealtTo) < 2 {
		return nil, newError(CodeStateCorruption, "dealt hole cards to %d players, need at least 2", len(dealtTo))
	}

	ctx.setFirstToAct()

	// Card values stay out of event data; only the fact of the deal is public.
	return []Event{
		NewEvent(EventCardsDealt, PhasePreFlop, map[string]any{
			"players":        dealtTo,
			"cards_each":     2,
			"deck_remaining": ctx.Deck.CardsRemaining(),
		}),
	}, nil
}

func (preFlopHandler) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	return handleBettingAction(ctx, playerID, action)
}

// streetHandler covers Flop, Turn, and River: reveal community cards and
// open a fresh betting round.
type streetHandler struct {
	phase  GamePhase
	reveal int
}

func (h streetHandler) Phase() GamePhase { return h.phase }

func (h streetHandler) Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error) {
	if err := ValidatePotConsistency(ctx); err != nil {
		return nil, err
	}
	if ctx.Deck == nil {
		return nil, newError(CodeStateCorruption, "no deck at %s", h.phase)
	}

	cards := ctx.Deck.Deal(h.reveal)
	if cards == nil {
		return nil, newError(CodeStateCorruption, "deck exhausted dealing %s", h.phase)
	}
	ctx.CommunityCards = append(ctx.CommunityCards, cards...)

	ctx.resetBettingRound()
	ctx.setFirstToAct()

	return []Event{
		NewEvent(EventCommunityCardsRevealed, h.phase, map[string]any{
			"cards": cardStrings(cards),
			"board": cardStrings(ctx.CommunityCards),
		}),
	}, nil
}

func (h streetHandler) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	return handleBettingAction(ctx, playerID, action)
}

// showdownHandler resolves the hand: runs out the board when the betting
// ended early on all-ins, decomposes the pot, and awards every tier.
type showdownHandler struct{}

func (showdownHandler) Phase() GamePhase { return PhaseShowdown }

func (showdownHandler) Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error) {
	ctx.ActivePlayerID = ""

	var events []Event
	if missing := 5 - len(ctx.CommunityCards); missing > 0 {
		if ctx.Deck == nil {
			return nil, newError(CodeStateCorruption, "no deck for showdown runout")
		}
		cards := ctx.Deck.Deal(missing)
		if cards == nil {
			return nil, newError(CodeStateCorruption, "deck exhausted on showdown runout")
		}
		ctx.CommunityCards = append(ctx.CommunityCards, cards...)
		events = append(events, NewEvent(EventCommunityCardsRevealed, PhaseShowdown, map[string]any{
			"cards": cardStrings(cards),
			"board": cardStrings(ctx.CommunityCards),
		}))
	}

	pots := calculateSidePots(ctx)
	if err := validateSidePots(ctx, pots); err != nil {
		return nil, err
	}

	awardEvents, err := distributePots(ctx, deps.eval, pots)
	if err != nil {
		return nil, err
	}
	events = append(events, awardEvents...)

	// Re-establish pot consistency before anyone observes the context.
	for _, p := range ctx.Players {
		p.CurrentBet = 0
		p.TotalBetThisHand = 0
	}
	ctx.CurrentBet = 0
	ctx.MinRaise = 0
	ctx.ActedSinceRaise = nil
	ctx.ShowdownComplete = true

	return events, nil
}

func (showdownHandler) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	return rejectAction(PhaseShowdown, playerID)
}

// finishedHandler closes the hand. On the fold path it still holds the
// whole pot and awards it to the last player standing.
type finishedHandler struct{}

func (finishedHandler) Phase() GamePhase { return PhaseFinished }

func (finishedHandler) Enter(ctx *GameContext, deps *handlerDeps) ([]Event, error) {
	ctx.ActivePlayerID = ""

	var events []Event
	trigger := "showdown"
	if ctx.PotTotal > 0 {
		trigger = "fold"
		awardEvents, err := awardUncontestedPot(ctx)
		if err != nil {
			return nil, err
		}
		events = append(events, awardEvents...)
	}

	for _, p := range ctx.Players {
		p.CurrentBet = 0
		p.TotalBetThisHand = 0
	}
	ctx.CurrentBet = 0
	ctx.MinRaise = 0
	ctx.ActedSinceRaise = nil

	if ctx.PotTotal != 0 {
		return nil, newError(CodeInvariantViolation, "pot holds %d chips at hand end", ctx.PotTotal)
	}

	winners := make([]map[string]any, 0, len(ctx.Winners))
	for _, w := range ctx.Winners {
		winners = append(winners, map[string]any{
			"player_id": w.PlayerID,
			"amount":    w.Amount,
			"pot_index": w.PotIndex,
			"hand":      w.HandDescription,
		})
	}
	events = append(events, NewEvent(EventHandEnded, PhaseFinished, map[string]any{
		"hand_number": ctx.HandNumber,
		"trigger":     trigger,
		"winners":     winners,
	}))
	return events, nil
}

func (finishedHandler) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	return rejectAction(PhaseFinished, playerID)
}

// awardUncontestedPot gives the whole pot to the last player contesting
// it. When nobody is left in the hand the pot splits across seated players
// still in the game, a defensive path that should never trigger.
func awardUncontestedPot(ctx *GameContext) ([]Event, error) {
	winners := ctx.InHandPlayers()
	if len(winners) == 0 {
		for _, p := range ctx.Players {
			if p.Status != StatusOut {
				winners = append(winners, p)
			}
		}
	}
	if len(winners) == 0 {
		return nil, newError(CodeStateCorruption, "pot of %d with nobody to award it to", ctx.PotTotal)
	}

	pot := ctx.PotTotal
	share := pot / len(winners)
	remainder := pot % len(winners)

	var events []Event
	for i, p := range winners {
		amount := share
		if i < remainder {
			amount++
		}
		if amount == 0 {
			continue
		}
		p.Chips += amount
		ctx.PotTotal -= amount
		ctx.Winners = append(ctx.Winners, WinnerAward{
			PlayerID:        p.ID,
			Amount:          amount,
			PotIndex:        0,
			HandDescription: "win by fold",
		})
		events = append(events, newPlayerEvent(EventPotUpdated, PhaseFinished, p.ID, map[string]any{
			"awarded": amount,
		}))
	}
	return events, nil
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
