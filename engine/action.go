package engine

// ActionType is one of the five betting moves a player can make.
type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionRaise ActionType = "raise"
	ActionAllIn ActionType = "all_in"
)

// Known reports whether the action type is one of the defined moves.
func (t ActionType) Known() bool {
	switch t {
	case ActionFold, ActionCheck, ActionCall, ActionRaise, ActionAllIn:
		return true
	}
	return false
}

func (t ActionType) String() string {
	return string(t)
}

// PlayerAction is a command payload describing one betting move. Amount is
// the target total bet for the round and is only meaningful for raises.
type PlayerAction struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// Shape validation only. Context validation (turn order, bet sizing) happens
// in the phase handlers.
func (a PlayerAction) validateShape() error {
	if !a.Type.Known() {
		return newError(CodeInvalidInput, "unknown action type %q", string(a.Type))
	}
	if a.Amount < 0 {
		return newError(CodeInvalidInput, "negative action amount %d", a.Amount)
	}
	if a.Type == ActionRaise && a.Amount == 0 {
		return newError(CodeInvalidInput, "raise requires a target amount")
	}
	return nil
}

// Fold returns a fold action.
func Fold() PlayerAction { return PlayerAction{Type: ActionFold} }

// Check returns a check action.
func Check() PlayerAction { return PlayerAction{Type: ActionCheck} }

// Call returns a call action.
func Call() PlayerAction { return PlayerAction{Type: ActionCall} }

// Raise returns a raise to the given total bet for the round.
func Raise(amount int) PlayerAction { return PlayerAction{Type: ActionRaise, Amount: amount} }

// AllIn returns an all-in action.
func AllIn() PlayerAction { return PlayerAction{Type: ActionAllIn} }

// AvailableAction describes one permitted move with its amount bounds.
// For raises MinAmount is the smallest legal target and MaxAmount the
// all-in ceiling; for calls both carry the call cost.
type AvailableAction struct {
	Type      ActionType `json:"type"`
	MinAmount int        `json:"min_amount,omitempty"`
	MaxAmount int        `json:"max_amount,omitempty"`
}
