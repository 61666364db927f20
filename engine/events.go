package engine

import (
	"time"
)

// EventType identifies a kind of domain event.
type EventType string

const (
	EventGameStarted            EventType = "game_started"
	EventGameRemoved            EventType = "game_removed"
	EventHandStarted            EventType = "hand_started"
	EventPhaseChanged           EventType = "phase_changed"
	EventPlayerActionExecuted   EventType = "player_action_executed"
	EventPlayerFolded           EventType = "player_folded"
	EventPlayerCalled           EventType = "player_called"
	EventPlayerRaised           EventType = "player_raised"
	EventPlayerChecked          EventType = "player_checked"
	EventPlayerAllIn            EventType = "player_all_in"
	EventBetPlaced              EventType = "bet_placed"
	EventPotUpdated             EventType = "pot_updated"
	EventCardsDealt             EventType = "cards_dealt"
	EventCommunityCardsRevealed EventType = "community_cards_revealed"
	EventHandEnded              EventType = "hand_ended"
	EventHandAutoFinish         EventType = "hand_auto_finish"
	EventInvalidAction          EventType = "invalid_action"
	EventCommandRolledBack      EventType = "command_rolled_back"

	// EventAny subscribes to every event type.
	EventAny EventType = "*"
)

func (t EventType) String() string {
	return string(t)
}

// Event is one domain event. Data is a shallow payload map; hole card
// values never appear in event data, only public information does.
type Event struct {
	Type          EventType      `json:"type"`
	Data          map[string]any `json:"data,omitempty"`
	SourcePhase   GamePhase      `json:"source_phase"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// NewEvent builds an event for the given phase. The timestamp is stamped by
// the bus at publish time, the correlation id by the command service.
func NewEvent(t EventType, phase GamePhase, data map[string]any) Event {
	return Event{Type: t, SourcePhase: phase, Data: data}
}

func newPlayerEvent(t EventType, phase GamePhase, playerID string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	data["player_id"] = playerID
	return NewEvent(t, phase, data)
}

func newPhaseChangedEvent(from, to GamePhase, reason string) Event {
	return NewEvent(EventPhaseChanged, from, map[string]any{
		"from":   from.String(),
		"to":     to.String(),
		"reason": reason,
	})
}

func newPotUpdatedEvent(phase GamePhase, potTotal int) Event {
	return NewEvent(EventPotUpdated, phase, map[string]any{
		"pot_total": potTotal,
	})
}

func newRolledBackEvent(phase GamePhase, op string, code ErrorCode, message string) Event {
	return NewEvent(EventCommandRolledBack, phase, map[string]any{
		"operation":  op,
		"error_code": string(code),
		"message":    message,
	})
}
