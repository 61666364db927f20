package engine

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/gameid"
	"github.com/lox/holdem-engine/internal/randutil"
)

const defaultSnapshotLimit = 100

// Snapshot is an immutable deep copy of a GameContext plus metadata. The
// JSON form reconstructs the context exactly, including the deck order, so
// a host can persist and replay sessions.
type Snapshot struct {
	ID          string       `json:"snapshot_id"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	HandNumber  int          `json:"hand_number"`
	Description string       `json:"description,omitempty"`
	State       *GameContext `json:"state"`
}

// Redacted returns a copy safe to hand to the given player's strategy:
// every other player's hole cards are hidden and the deck is withheld.
func (s *Snapshot) Redacted(playerID string) *Snapshot {
	clone := *s
	clone.State = s.State.Clone()
	clone.State.Deck = nil
	for _, p := range clone.State.Players {
		if p.ID != playerID {
			p.HoleCards = nil
		}
	}
	return &clone
}

// MarshalJSON flattens the snapshot for persistence.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal((*alias)(s))
}

// UnmarshalJSON restores a persisted snapshot. The deck, when present,
// comes back without a rand source; SnapshotManager.Restore reattaches one.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	return json.Unmarshal(data, (*alias)(s))
}

// SnapshotManager creates and retains snapshots for one session, newest
// first, bounded by a configurable limit.
type SnapshotManager struct {
	mu      sync.Mutex
	clock   quartz.Clock
	ids     *gameid.Generator
	history []*Snapshot
	limit   int
	version int
}

// SnapshotOption configures a SnapshotManager.
type SnapshotOption func(*SnapshotManager)

// WithSnapshotClock injects the clock used for snapshot timestamps.
func WithSnapshotClock(clock quartz.Clock) SnapshotOption {
	return func(m *SnapshotManager) { m.clock = clock }
}

// WithSnapshotLimit bounds the retained history.
func WithSnapshotLimit(limit int) SnapshotOption {
	return func(m *SnapshotManager) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

// WithSnapshotIDGenerator injects the generator for snapshot ids.
func WithSnapshotIDGenerator(ids *gameid.Generator) SnapshotOption {
	return func(m *SnapshotManager) { m.ids = ids }
}

// NewSnapshotManager creates a manager with a bounded history.
func NewSnapshotManager(opts ...SnapshotOption) *SnapshotManager {
	m := &SnapshotManager{
		clock: quartz.NewReal(),
		limit: defaultSnapshotLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ids == nil {
		m.ids = gameid.NewGenerator(randutil.New(m.clock.Now().UnixNano()), m.clock)
	}
	return m
}

// Create deep-copies the context into a new snapshot with a fresh id and a
// monotonic version, and records it in the history.
func (m *SnapshotManager) Create(ctx *GameContext, description string) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	snap := &Snapshot{
		ID:          m.ids.Generate(gameid.KindSnapshot),
		Version:     m.version,
		CreatedAt:   m.clock.Now(),
		HandNumber:  ctx.HandNumber,
		Description: description,
		State:       ctx.Clone(),
	}

	m.history = append(m.history, snap)
	if len(m.history) > m.limit {
		m.history = append([]*Snapshot(nil), m.history[len(m.history)-m.limit:]...)
	}
	return snap
}

// Restore rebuilds a GameContext from a snapshot. The returned context is a
// fresh deep copy sharing nothing with the snapshot, so the snapshot stays
// immutable. A deck deserialized without a rand source gets one derived
// from the session seed and hand number.
func (m *SnapshotManager) Restore(snap *Snapshot) (*GameContext, error) {
	if snap == nil || snap.State == nil {
		return nil, newError(CodeInvalidInput, "cannot restore empty snapshot")
	}
	if len(snap.State.Players) == 0 {
		return nil, newError(CodeInvalidInput, "snapshot %s has no players", snap.ID)
	}
	if !snap.State.CurrentPhase.Valid() {
		return nil, newError(CodeInvalidInput, "snapshot %s has invalid phase %d", snap.ID, int(snap.State.CurrentPhase))
	}

	ctx := snap.State.Clone()
	if ctx.Deck != nil && !ctx.Deck.HasRand() {
		ctx.Deck.SetRand(randutil.New(randutil.Derive(ctx.Seed, int64(ctx.HandNumber))))
	}
	return ctx, nil
}

// History returns the retained snapshots, newest first.
func (m *SnapshotManager) History() []*Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Snapshot, len(m.history))
	for i, snap := range m.history {
		out[len(m.history)-1-i] = snap
	}
	return out
}

// Latest returns the most recent snapshot, or nil when none exist.
func (m *SnapshotManager) Latest() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// Get returns the snapshot with the given id.
func (m *SnapshotManager) Get(id string) (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, snap := range m.history {
		if snap.ID == id {
			return snap, true
		}
	}
	return nil, false
}

// ClearOld trims the history to the keep newest snapshots.
func (m *SnapshotManager) ClearOld(keep int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(m.history) > keep {
		m.history = append([]*Snapshot(nil), m.history[len(m.history)-keep:]...)
	}
}

// Len returns the number of retained snapshots.
func (m *SnapshotManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}
