package engine

import (
	"fmt"

	"github.com/lox/holdem-engine/poker"
)

// PlayerStatus tracks a player's standing within the current hand.
type PlayerStatus int

const (
	StatusActive PlayerStatus = iota
	StatusFolded
	StatusAllIn
	StatusOut
)

var statusNames = [...]string{"active", "folded", "all_in", "out"}

func (s PlayerStatus) String() string {
	if s < StatusActive || s > StatusOut {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s PlayerStatus) MarshalText() ([]byte, error) {
	if s < StatusActive || s > StatusOut {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *PlayerStatus) UnmarshalText(text []byte) error {
	str := string(text)
	for i, name := range statusNames {
		if name == str {
			*s = PlayerStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown player status %q", str)
}

// PlayerState holds one seat's state. Chips persist across hands; bets,
// status, hole cards, and the all-in flag are per-hand.
type PlayerState struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Chips            int          `json:"chips"`
	CurrentBet       int          `json:"current_bet"`
	TotalBetThisHand int          `json:"total_bet_this_hand"`
	Status           PlayerStatus `json:"status"`
	AllIn            bool         `json:"is_all_in"`
	Active           bool         `json:"is_active"`
	HoleCards        []poker.Card `json:"hole_cards,omitempty"`
	Position         int          `json:"position"`
	Dealer           bool         `json:"dealer,omitempty"`
	SmallBlind       bool         `json:"small_blind,omitempty"`
	BigBlind         bool         `json:"big_blind,omitempty"`
}

// Actionable reports whether the player can be asked to act: seated in the
// hand with chips behind. An all-in player is in the hand but not actionable.
func (p *PlayerState) Actionable() bool {
	return p.Active && p.Chips > 0 && p.Status != StatusFolded && p.Status != StatusOut
}

// InHand reports whether the player still contests the pot.
func (p *PlayerState) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// Clone returns a deep copy, including hole cards.
func (p *PlayerState) Clone() *PlayerState {
	clone := *p
	if p.HoleCards != nil {
		clone.HoleCards = make([]poker.Card, len(p.HoleCards))
		copy(clone.HoleCards, p.HoleCards)
	}
	return &clone
}

// resetForHand clears per-hand state. Chips and seat flags persist. Players
// without chips sit out the hand as status out.
func (p *PlayerState) resetForHand() {
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
