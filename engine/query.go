package engine

// QueryService exposes read-only views over live sessions. Every answer is
// derived from a committed snapshot, so queries never observe a session
// mid-transition and callers cannot reach mutable engine state.
type QueryService struct {
	cmds *CommandService
}

// NewQueryService creates a query service over the given command service.
func NewQueryService(cmds *CommandService) *QueryService {
	return &QueryService{cmds: cmds}
}

// GetSnapshot captures a fresh snapshot of the session's committed state.
func (q *QueryService) GetSnapshot(gameID string) (*Snapshot, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshots.Create(sess.ctx, "query"), nil
}

// GetPlayerView captures a snapshot redacted to what the given player may
// see: their own hole cards only and no deck.
func (q *QueryService) GetPlayerView(gameID, playerID string) (*Snapshot, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ctx.Player(playerID) == nil {
		return nil, newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	return sess.snapshots.Create(sess.ctx, "query for "+playerID).Redacted(playerID), nil
}

// GetAvailableActions derives the moves currently permitted for the player,
// with their amount bounds. Empty when it is not the player's turn.
func (q *QueryService) GetAvailableActions(gameID, playerID string) ([]AvailableAction, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ctx.Player(playerID) == nil {
		return nil, newError(CodeInvalidInput, "unknown player %s", playerID)
	}
	return availableActions(sess.ctx, playerID), nil
}

// GameOverReport explains an is-game-over answer.
type GameOverReport struct {
	Over bool `json:"over"`
	// Funded lists the players still holding chips, in seat order.
	Funded []string `json:"funded"`
	Reason string   `json:"reason"`
}

// IsGameOver reports whether the game can continue: it is over exactly when
// fewer than two players have chips behind. The current hand's state, folded
// players included, never affects the answer.
func (q *QueryService) IsGameOver(gameID string) (GameOverReport, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return GameOverReport{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var funded []string
	for _, p := range sess.ctx.Players {
		if p.Chips > 0 {
			funded = append(funded, p.ID)
		}
	}

	report := GameOverReport{Funded: funded, Over: len(funded) < 2}
	switch len(funded) {
	case 0:
		report.Reason = "no player has chips behind"
	case 1:
		report.Reason = funded[0] + " holds all the chips"
	default:
		report.Reason = "multiple players still have chips"
	}
	return report, nil
}

// GetEventHistory returns up to limit retained events of the given type for
// one game, oldest first. EventAny matches all types; limit <= 0 is no limit.
func (q *QueryService) GetEventHistory(gameID string, t EventType, limit int) []Event {
	all := q.cmds.bus.History(t, 0)
	var out []Event
	for _, e := range all {
		if id, _ := e.Data["game_id"].(string); id == gameID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// GetSnapshotHistory returns the session's retained snapshots, newest first.
func (q *QueryService) GetSnapshotHistory(gameID string) ([]*Snapshot, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return sess.snapshots.History(), nil
}

// GetTransitions returns the phase transitions the session has taken,
// oldest first.
func (q *QueryService) GetTransitions(gameID string) ([]Transition, error) {
	sess, err := q.cmds.lookup(gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.machine.History(), nil
}
