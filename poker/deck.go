package poker

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card // Fixed size array
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG. The rand source must
// not be nil: shuffling never falls back to process-global randomness.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("poker: NewDeck requires a rand source")
	}

	d := &Deck{
		next: 0,
		rng:  rng,
	}

	// Create all 52 cards
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	// Shuffle
	d.Shuffle()
	return d
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards
}

// DealOne deals a single card from the deck
func (d *Deck) DealOne() Card {
	if d.next >= len(d.cards) {
		return 0
	}
	card := d.cards[d.next]
	d.next++
	return card
}

// Peek returns the next card without dealing it, or 0 when exhausted.
func (d *Deck) Peek() Card {
	if d.next >= len(d.cards) {
		return 0
	}
	return d.cards[d.next]
}

// Reset resets and reshuffles the deck
func (d *Deck) Reset() {
	d.Shuffle()
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// RemainingCards returns the undealt portion of the deck as a bitset.
func (d *Deck) RemainingCards() Hand {
	var h Hand
	for _, c := range d.cards[d.next:] {
		h.AddCard(c)
	}
	return h
}

// DealtCards returns every card dealt since the last shuffle as a bitset.
func (d *Deck) DealtCards() Hand {
	var h Hand
	for _, c := range d.cards[:d.next] {
		h.AddCard(c)
	}
	return h
}

// Clone returns a copy sharing the same rand source. The card order and deal
// position are copied by value, which is all rollback needs: a hand never
// reshuffles mid-flight.
func (d *Deck) Clone() *Deck {
	clone := *d
	return &clone
}

// SetRand replaces the deck's rand source, used when rebuilding a deck from
// a snapshot.
func (d *Deck) SetRand(rng *rand.Rand) {
	d.rng = rng
}

// HasRand reports whether the deck carries a rand source. Decks rebuilt
// from serialized state do not until SetRand is called.
func (d *Deck) HasRand() bool {
	return d.rng != nil
}

type deckState struct {
	Cards []Card `json:"cards"`
	Next  int    `json:"next"`
}

// MarshalJSON encodes the full card order and deal position so a snapshot can
// reconstruct the deck exactly.
func (d *Deck) MarshalJSON() ([]byte, error) {
	return json.Marshal(deckState{Cards: d.cards[:], Next: d.next})
}

// UnmarshalJSON restores card order and deal position. The rand source is not
// part of the wire state; callers reattach one with SetRand.
func (d *Deck) UnmarshalJSON(data []byte) error {
	var state deckState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if len(state.Cards) != len(d.cards) {
		return fmt.Errorf("deck state has %d cards, want %d", len(state.Cards), len(d.cards))
	}
	if state.Next < 0 || state.Next > len(d.cards) {
		return fmt.Errorf("deck position %d out of range", state.Next)
	}
	copy(d.cards[:], state.Cards)
	d.next = state.Next
	return nil
}
