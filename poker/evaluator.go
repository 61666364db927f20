package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// HandCategory enumerates hand categories ordered from weakest to strongest.
type HandCategory uint8

const (
	HighCard HandCategory = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (hc HandCategory) String() string {
	switch hc {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandResult is the strength of a best five-card hand. Results order by
// (Category, Primary, Secondary, Kickers...) and nothing else, so equal
// fields mean a genuine chop.
type HandResult struct {
	Category  HandCategory `json:"category"`
	Primary   Rank         `json:"primary"`
	Secondary Rank         `json:"secondary,omitempty"`
	Kickers   []Rank       `json:"kickers,omitempty"`
}

// Evaluate returns the best hand for exactly 2 hole cards plus 0..5 community
// cards, requiring at least 5 cards in total. The wheel A-2-3-4-5 ranks as a
// five-high straight.
func Evaluate(hole []Card, community []Card) (HandResult, error) {
	if len(hole) != 2 {
		return HandResult{}, fmt.Errorf("evaluate: need exactly 2 hole cards, got %d", len(hole))
	}
	if len(community) > 5 {
		return HandResult{}, fmt.Errorf("evaluate: at most 5 community cards, got %d", len(community))
	}
	total := len(hole) + len(community)
	if total < 5 {
		return HandResult{}, fmt.Errorf("evaluate: need at least 5 cards, got %d", total)
	}

	var h Hand
	for _, c := range hole {
		if !c.Valid() {
			return HandResult{}, fmt.Errorf("evaluate: invalid hole card %#x", uint64(c))
		}
		h.AddCard(c)
	}
	for _, c := range community {
		if !c.Valid() {
			return HandResult{}, fmt.Errorf("evaluate: invalid community card %#x", uint64(c))
		}
		h.AddCard(c)
	}
	if h.CountCards() != total {
		return HandResult{}, fmt.Errorf("evaluate: duplicate card in input")
	}

	return evaluateHand(h), nil
}

// EvaluateHand ranks the best five cards of an arbitrary 5..7 card set.
func EvaluateHand(h Hand) (HandResult, error) {
	n := h.CountCards()
	if n < 5 || n > 7 {
		return HandResult{}, fmt.Errorf("evaluate: need 5..7 cards, got %d", n)
	}
	return evaluateHand(h), nil
}

func evaluateHand(h Hand) HandResult {
	var suitMasks [4]uint16
	var ranks uint16
	for suit := Clubs; suit <= Spades; suit++ {
		mask := h.SuitMask(suit)
		suitMasks[suit] = mask
		ranks |= mask
	}

	// Straight flush first. With at most 7 cards only one suit can hold 5.
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high := straightHigh(suitMask); high > 0 {
			if high == Ace {
				return HandResult{Category: RoyalFlush, Primary: Ace}
			}
			return HandResult{Category: StraightFlush, Primary: high}
		}
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]

	// Rank multiplicities fall out of suit-mask intersections.
	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quadsMask != 0 {
		quad := highestRank(quadsMask)
		kicker := highestRank(ranks &^ rankBit(quad))
		return HandResult{Category: FourOfAKind, Primary: quad, Kickers: []Rank{kicker}}
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		// A second trip fills the house as the pair.
		pairCandidates := pairsMask | (tripsMask &^ rankBit(trip))
		if pairCandidates != 0 {
			return HandResult{
				Category:  FullHouse,
				Primary:   trip,
				Secondary: highestRank(pairCandidates),
			}
		}
	}

	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		top := topRanks(suitMask, 5)
		return HandResult{Category: Flush, Primary: top[0], Kickers: top[1:]}
	}

	if high := straightHigh(ranks); high > 0 {
		return HandResult{Category: Straight, Primary: high}
	}

	if tripsMask != 0 {
		trip := highestRank(tripsMask)
		return HandResult{
			Category: ThreeOfAKind,
			Primary:  trip,
			Kickers:  topRanks(ranks&^rankBit(trip), 2),
		}
	}

	if bits.OnesCount16(pairsMask) >= 2 {
		high := highestRank(pairsMask)
		low := highestRank(pairsMask &^ rankBit(high))
		kicker := highestRank(ranks &^ (rankBit(high) | rankBit(low)))
		return HandResult{Category: TwoPair, Primary: high, Secondary: low, Kickers: []Rank{kicker}}
	}

	if pairsMask != 0 {
		pair := highestRank(pairsMask)
		return HandResult{
			Category: Pair,
			Primary:  pair,
			Kickers:  topRanks(ranks&^rankBit(pair), 3),
		}
	}

	top := topRanks(ranks, 5)
	return HandResult{Category: HighCard, Primary: top[0], Kickers: top[1:]}
}

// straightHigh returns the high rank of the best straight in the rank mask,
// or 0 when there is none. The wheel reads as five high, checked only after
// longer sequences so A-2-3-4-5-6 ranks as six high.
func straightHigh(mask uint16) Rank {
	mask &= rankMask

	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		low := bits.Len16(seq) - 1
		return Rank(low+4) + Two
	}

	const wheel = 0x100F // Ace + 2-3-4-5
	if mask&wheel == wheel {
		return Five
	}
	return 0
}

// highestRank returns the highest rank present in the bitmask (or 0 when empty).
func highestRank(mask uint16) Rank {
	if mask == 0 {
		return 0
	}
	return Rank(bits.Len16(mask)-1) + Two
}

// topRanks returns the n highest ranks in the mask, descending.
func topRanks(mask uint16, n int) []Rank {
	ranks := make([]Rank, 0, n)
	for len(ranks) < n && mask != 0 {
		top := Rank(bits.Len16(mask)-1) + Two
		ranks = append(ranks, top)
		mask &^= rankBit(top)
	}
	return ranks
}

func rankBit(r Rank) uint16 {
	return 1 << (r - Two)
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 for a chop.
func Compare(a, b HandResult) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	if a.Primary != b.Primary {
		if a.Primary > b.Primary {
			return 1
		}
		return -1
	}
	if a.Secondary != b.Secondary {
		if a.Secondary > b.Secondary {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] != b.Kickers[i] {
			if a.Kickers[i] > b.Kickers[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Compare returns 1 if r beats other, -1 if other wins, 0 for a chop.
func (r HandResult) Compare(other HandResult) int {
	return Compare(r, other)
}

// Describe returns a readable summary like "Full House, Kings over Tens".
func (r HandResult) Describe() string {
	switch r.Category {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", rankWord(r.Primary))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", pluralRank(r.Primary))
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", pluralRank(r.Primary), pluralRank(r.Secondary))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankWord(r.Primary))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankWord(r.Primary))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", pluralRank(r.Primary))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", pluralRank(r.Primary), pluralRank(r.Secondary))
	case Pair:
		return fmt.Sprintf("Pair of %s", pluralRank(r.Primary))
	default:
		return fmt.Sprintf("High Card %s", rankWord(r.Primary))
	}
}

var rankWords = map[Rank]string{
	Two: "Two", Three: "Three", Four: "Four", Five: "Five", Six: "Six",
	Seven: "Seven", Eight: "Eight", Nine: "Nine", Ten: "Ten",
	Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
}

func rankWord(r Rank) string {
	if w, ok := rankWords[r]; ok {
		return w
	}
	return "?"
}

func pluralRank(r Rank) string {
	w := rankWord(r)
	if strings.HasSuffix(w, "x") {
		return w + "es"
	}
	return w + "s"
}
