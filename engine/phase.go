package engine

import "fmt"

// GamePhase identifies one stage in the lifecycle of a hand.
type GamePhase int

const (
	PhaseInit GamePhase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseFinished
)

var phaseNames = [...]string{"init", "preflop", "flop", "turn", "river", "showdown", "finished"}

func (p GamePhase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Valid reports whether p is one of the defined phases.
func (p GamePhase) Valid() bool {
	return p >= PhaseInit && p <= PhaseFinished
}

// Betting reports whether players act in this phase.
func (p GamePhase) Betting() bool {
	switch p {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// legalTransitions is the complete phase graph. Showdown can be reached
// early from any betting phase when remaining players are all-in, and
// Finished directly when a hand auto-finishes on folds.
var legalTransitions = map[GamePhase][]GamePhase{
	PhaseInit:     {PhasePreFlop},
	PhasePreFlop:  {PhaseFlop, PhaseShowdown, PhaseFinished},
	PhaseFlop:     {PhaseTurn, PhaseShowdown, PhaseFinished},
	PhaseTurn:     {PhaseRiver, PhaseShowdown, PhaseFinished},
	PhaseRiver:    {PhaseShowdown, PhaseFinished},
	PhaseShowdown: {PhaseFinished},
	PhaseFinished: {PhasePreFlop, PhaseInit},
}

// CanTransition reports whether the edge p -> to is in the legal graph.
func (p GamePhase) CanTransition(to GamePhase) bool {
	for _, next := range legalTransitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStreet returns the ordinary successor of a betting phase when the
// round completes with two or more players still able to bet.
func (p GamePhase) NextStreet() (GamePhase, bool) {
	switch p {
	case PhasePreFlop:
		return PhaseFlop, true
	case PhaseFlop:
		return PhaseTurn, true
	case PhaseTurn:
		return PhaseRiver, true
	case PhaseRiver:
		return PhaseShowdown, true
	}
	return p, false
}

func (p GamePhase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *GamePhase) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range phaseNames {
		if name == s {
			*p = GamePhase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}
