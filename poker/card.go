package poker

import (
	"fmt"
	"math/bits"
)

// Card represents a single card as a bit position in a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], one bit per card,
// so hands union with | and distinctness checks are single AND operations.
type Card uint64

// Hand is a set of cards in the same uint64 layout. Multiple cards are
// represented by multiple bits set.
type Hand uint64

// Suit identifies one of the four suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Rank is a card rank on the 2..14 scale, 14 being the ace.
type Rank uint8

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

const (
	rankBits = 13
	rankMask = 0x1FFF
)

// NewCard creates a card from rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	if rank < Two || rank > Ace || suit > Spades {
		return 0
	}
	offset := uint8(suit)*rankBits + uint8(rank-Two)
	return Card(1) << offset
}

// Valid reports whether the card is exactly one well-formed card bit.
func (c Card) Valid() bool {
	return bits.OnesCount64(uint64(c)) == 1 && c.bitPosition() < 52
}

func (c Card) bitPosition() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the rank of the card on the 2..14 scale.
func (c Card) Rank() Rank {
	pos := c.bitPosition()
	if pos >= 52 {
		return 0
	}
	return Rank(pos%rankBits) + Two
}

// Suit returns the suit of the card.
func (c Card) Suit() Suit {
	pos := c.bitPosition()
	if pos >= 52 {
		return Suit(255)
	}
	return Suit(pos / rankBits)
}

// String returns the two-character form, e.g. "As", "Kh", "Td".
func (c Card) String() string {
	const ranks = "23456789TJQKA"
	const suits = "cdhs"

	pos := c.bitPosition()
	if pos >= 52 {
		return "??"
	}

	return string(ranks[pos%rankBits]) + string(suits[pos/rankBits])
}

// Symbol returns the rank with a suit glyph, e.g. "A♠", for display.
func (c Card) Symbol() string {
	const ranks = "23456789TJQKA"
	suits := [4]string{"♣", "♦", "♥", "♠"}

	pos := c.bitPosition()
	if pos >= 52 {
		return "??"
	}

	return string(ranks[pos%rankBits]) + suits[pos/rankBits]
}

// ParseCard parses a two-character string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	var rank Rank
	switch s[0] {
	case '2':
		rank = Two
	case '3':
		rank = Three
	case '4':
		rank = Four
	case '5':
		rank = Five
	case '6':
		rank = Six
	case '7':
		rank = Seven
	case '8':
		rank = Eight
	case '9':
		rank = Nine
	case 'T', 't':
		rank = Ten
	case 'J', 'j':
		rank = Jack
	case 'Q', 'q':
		rank = Queen
	case 'K', 'k':
		rank = King
	case 'A', 'a':
		rank = Ace
	default:
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}

	var suit Suit
	switch s[1] {
	case 'c', 'C':
		suit = Clubs
	case 'd', 'D':
		suit = Diamonds
	case 'h', 'H':
		suit = Hearts
	case 's', 'S':
		suit = Spades
	default:
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}

	return NewCard(rank, suit), nil
}

// MustParseCard is ParseCard that panics on error, for tests and fixtures.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a space-separated list like "As Kh 7d".
func ParseCards(s string) ([]Card, error) {
	if s == "" {
		return nil, nil
	}
	var cards []Card
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				c, err := ParseCard(s[start:i])
				if err != nil {
					return nil, err
				}
				cards = append(cards, c)
			}
			start = i + 1
		}
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on error, for tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// MarshalText encodes the card as its two-character form for snapshots.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid card %#x", uint64(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes the two-character form.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

func (r Rank) String() string {
	const ranks = "23456789TJQKA"
	if r < Two || r > Ace {
		return "?"
	}
	return string(ranks[r-Two])
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return (h & Hand(c)) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// SuitMask returns the cards of one suit as a 13-bit rank mask.
func (h Hand) SuitMask(suit Suit) uint16 {
	offset := uint8(suit) * rankBits
	return uint16((h >> offset) & rankMask)
}

// RankMask returns a 13-bit mask of which ranks are present.
func (h Hand) RankMask() uint16 {
	var mask uint16
	for suit := Clubs; suit <= Spades; suit++ {
		mask |= h.SuitMask(suit)
	}
	return mask
}

// Cards expands the hand back into individual cards, lowest bit first.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	rest := uint64(h)
	for rest != 0 {
		low := rest & -rest
		cards = append(cards, Card(low))
		rest &^= low
	}
	return cards
}
