package engine

import "fmt"

// Config holds table defaults and engine tuning for a command service.
// Per-game values in CreateGameParams override the table defaults.
type Config struct {
	// InitialChips is the starting stack for every seat.
	InitialChips int
	// SmallBlind and BigBlind are the forced bets; BigBlind must exceed
	// SmallBlind.
	SmallBlind int
	BigBlind   int
	// Seed drives every per-session RNG. Sessions derive independent
	// streams from it, so one seed reproduces a whole run.
	Seed int64
	// MaxPlayers caps seats per game.
	MaxPlayers int
	// SnapshotHistory bounds retained snapshots per session.
	SnapshotHistory int
	// EventHistory bounds the bus history when the service owns the bus.
	EventHistory int
	// AutoAdvance moves to the next phase as soon as a betting round
	// settles. When false the host drives progression with AdvancePhase.
	AutoAdvance bool
	// AutoPlayAI keeps executing strategy decisions after each command
	// while the active seat has a registered strategy.
	AutoPlayAI bool
}

// DefaultConfig returns the standard table configuration.
func DefaultConfig() Config {
	return Config{
		InitialChips:    1000,
		SmallBlind:      50,
		BigBlind:        100,
		Seed:            1,
		MaxPlayers:      10,
		SnapshotHistory: defaultSnapshotLimit,
		EventHistory:    defaultHistoryLimit,
		AutoAdvance:     true,
		AutoPlayAI:      false,
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.InitialChips <= 0 {
		return fmt.Errorf("initial chips must be positive, got %d", c.InitialChips)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("big blind %d must exceed small blind %d", c.BigBlind, c.SmallBlind)
	}
	if c.InitialChips < c.BigBlind {
		return fmt.Errorf("initial chips %d cannot cover the big blind %d", c.InitialChips, c.BigBlind)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 23 {
		// 23 two-card hands plus a five-card board is the 52-card ceiling.
		return fmt.Errorf("max players must be between 2 and 23, got %d", c.MaxPlayers)
	}
	if c.SnapshotHistory < 1 {
		return fmt.Errorf("snapshot history must be at least 1, got %d", c.SnapshotHistory)
	}
	if c.EventHistory < 1 {
		return fmt.Errorf("event history must be at least 1, got %d", c.EventHistory)
	}
	return nil
}
