package engine

import (
	"time"

	"github.com/coder/quartz"
)

const defaultTransitionLimit = 512

// Transition records one phase change for replay and diagnostics.
type Transition struct {
	From   GamePhase `json:"from"`
	To     GamePhase `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// StateMachine validates and applies phase transitions for one session. It
// dispatches entry effects to the phase handlers and keeps a bounded record
// of every transition taken.
type StateMachine struct {
	handlers map[GamePhase]phaseHandler
	clock    quartz.Clock
	history  []Transition
	limit    int
}

// MachineOption configures a StateMachine.
type MachineOption func(*StateMachine)

// WithMachineClock injects the clock used to stamp transitions.
func WithMachineClock(clock quartz.Clock) MachineOption {
	return func(m *StateMachine) { m.clock = clock }
}

// WithTransitionLimit bounds the retained transition history.
func WithTransitionLimit(limit int) MachineOption {
	return func(m *StateMachine) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

// NewStateMachine creates a machine over the standard phase handlers.
func NewStateMachine(opts ...MachineOption) *StateMachine {
	m := &StateMachine{
		handlers: defaultHandlers(),
		clock:    quartz.NewReal(),
		limit:    defaultTransitionLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transition moves the context to the target phase, runs the target's entry
// effects, and records the step. The returned events start with the
// PhaseChanged event followed by whatever the entry effects produced. The
// context is left mid-mutation on error; callers roll back.
func (m *StateMachine) Transition(ctx *GameContext, deps *handlerDeps, to GamePhase, reason string) ([]Event, error) {
	from := ctx.CurrentPhase
	if !from.CanTransition(to) {
		return nil, newError(CodePhaseError, "illegal transition %s -> %s", from, to)
	}
	handler, ok := m.handlers[to]
	if !ok {
		return nil, newError(CodeStateCorruption, "no handler for phase %s", to)
	}

	ctx.CurrentPhase = to
	events := []Event{newPhaseChangedEvent(from, to, reason)}

	entryEvents, err := handler.Enter(ctx, deps)
	if err != nil {
		return nil, err
	}
	events = append(events, entryEvents...)

	m.history = append(m.history, Transition{From: from, To: to, Reason: reason, At: m.clock.Now()})
	if len(m.history) > m.limit {
		m.history = append([]Transition(nil), m.history[len(m.history)-m.limit:]...)
	}
	return events, nil
}

// HandleAction routes a player action to the current phase's handler.
func (m *StateMachine) HandleAction(ctx *GameContext, deps *handlerDeps, playerID string, action PlayerAction) ([]Event, error) {
	handler, ok := m.handlers[ctx.CurrentPhase]
	if !ok {
		return nil, newError(CodeStateCorruption, "no handler for phase %s", ctx.CurrentPhase)
	}
	return handler.HandleAction(ctx, deps, playerID, action)
}

// History returns a copy of the recorded transitions, oldest first.
func (m *StateMachine) History() []Transition {
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}

// nextPhase decides where a settled betting round goes: Finished when the
// pot is uncontested, Showdown when fewer than two players can still bet,
// otherwise the next street.
func nextPhase(ctx *GameContext) (GamePhase, string) {
	if ctx.CountInHand() <= 1 {
		return PhaseFinished, "hand auto finish"
	}
	if ctx.CountActionable() < 2 {
		return PhaseShowdown, "players all in"
	}
	next, ok := ctx.CurrentPhase.NextStreet()
	if !ok {
		return ctx.CurrentPhase, ""
	}
	if next == PhaseShowdown {
		return PhaseShowdown, "river betting complete"
	}
	return next, "betting round complete"
}
