package engine

// AIStrategy decides an action for a seat the host has marked as
// machine-played. The snapshot is redacted to the deciding player's view:
// no opponent hole cards, no deck. Strategies must treat it as read-only;
// the engine hands each call its own copy, so a misbehaving strategy can
// only corrupt its own view.
type AIStrategy interface {
	Decide(snapshot *Snapshot, playerID string) PlayerAction
}

// StrategyFunc adapts a plain function to the AIStrategy interface.
type StrategyFunc func(snapshot *Snapshot, playerID string) PlayerAction

// Decide implements AIStrategy.
func (f StrategyFunc) Decide(snapshot *Snapshot, playerID string) PlayerAction {
	return f(snapshot, playerID)
}
