package engine

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/poker"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(t *testing.T, mutate ...func(*Config)) *CommandService {
	t.Helper()
	cfg := DefaultConfig()
	for _, fn := range mutate {
		fn(&cfg)
	}
	svc, err := NewCommandService(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewCommandService: %v", err)
	}
	return svc
}

// headsUpGame creates and starts a 1000/1000 heads-up hand with the default
// 50/100 blinds. Seat p0 posts the small blind and acts first.
func headsUpGame(t *testing.T, svc *CommandService, gameID string) {
	t.Helper()
	if res := svc.CreateGame(CreateGameParams{GameID: gameID, PlayerIDs: []string{"p0", "p1"}}); !res.Success {
		t.Fatalf("CreateGame: %s", res.Message)
	}
	if res := svc.StartNewHand(gameID); !res.Success {
		t.Fatalf("StartNewHand: %s", res.Message)
	}
}

// testContext builds a bare context for unit tests that exercise betting and
// pot logic directly, bypassing the command service.
func testContext(players ...*PlayerState) *GameContext {
	ctx := &GameContext{
		GameID:          "test",
		CurrentPhase:    PhasePreFlop,
		Players:         players,
		SmallBlind:      50,
		BigBlind:        100,
		MinRaise:        100,
		ActedSinceRaise: make(map[string]bool),
	}
	for i, p := range players {
		p.Position = i
	}
	return ctx
}

func seatedPlayer(id string, chips int) *PlayerState {
	return &PlayerState{ID: id, Name: id, Chips: chips, Status: StatusActive, Active: true}
}

func mustCards(t *testing.T, s string) []poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	if err != nil {
		t.Fatalf("parse cards %q: %v", s, err)
	}
	return cards
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func hasEventType(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
