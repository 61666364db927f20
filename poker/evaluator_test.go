package poker

import (
	"testing"

	chehsunliu "github.com/chehsunliu/poker"

	"github.com/lox/holdem-engine/internal/randutil"
)

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		hole      string
		community string
		category  HandCategory
		primary   Rank
	}{
		{
			name:      "royal flush",
			hole:      "As Ks",
			community: "Qs Js Ts 2d 3c",
			category:  RoyalFlush,
			primary:   Ace,
		},
		{
			name:      "straight flush",
			hole:      "9h 8h",
			community: "7h 6h 5h Ad Ac",
			category:  StraightFlush,
			primary:   Nine,
		},
		{
			name:      "steel wheel counts as five high",
			hole:      "Ah 2h",
			community: "3h 4h 5h Kd Qc",
			category:  StraightFlush,
			primary:   Five,
		},
		{
			name:      "four of a kind",
			hole:      "Qd Qc",
			community: "Qh Qs 7d 2c 3h",
			category:  FourOfAKind,
			primary:   Queen,
		},
		{
			name:      "full house",
			hole:      "Kd Kc",
			community: "Kh Td Tc 2s 4h",
			category:  FullHouse,
			primary:   King,
		},
		{
			name:      "full house from two trips uses higher trip",
			hole:      "8d 8c",
			community: "8h 5d 5c 5s Ah",
			category:  FullHouse,
			primary:   Eight,
		},
		{
			name:      "flush",
			hole:      "Ad 9d",
			community: "Kd 7d 2d Qs Jc",
			category:  Flush,
			primary:   Ace,
		},
		{
			name:      "straight",
			hole:      "9c 8d",
			community: "7h 6s 5d Ad Kc",
			category:  Straight,
			primary:   Nine,
		},
		{
			name:      "broadway straight",
			hole:      "Ac Kd",
			community: "Qh Js Td 2d 2c",
			category:  Straight,
			primary:   Ace,
		},
		{
			name:      "wheel straight ranks five high",
			hole:      "Ac 2d",
			community: "3h 4s 5d Kd Qc",
			category:  Straight,
			primary:   Five,
		},
		{
			name:      "six card run beats the wheel inside it",
			hole:      "Ac 2d",
			community: "3h 4s 5d 6c Kd",
			category:  Straight,
			primary:   Six,
		},
		{
			name:      "three of a kind",
			hole:      "7d 7c",
			community: "7h Ad Kc 2s 4h",
			category:  ThreeOfAKind,
			primary:   Seven,
		},
		{
			name:      "two pair",
			hole:      "Ad Kc",
			community: "Ah Kd 7c 2s 4h",
			category:  TwoPair,
			primary:   Ace,
		},
		{
			name:      "pair",
			hole:      "Jd Jc",
			community: "Ah 8d 6c 4s 2h",
			category:  Pair,
			primary:   Jack,
		},
		{
			name:      "high card",
			hole:      "Ad Jc",
			community: "9h 7d 5c 3s 2h",
			category:  HighCard,
			primary:   Ace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hole, err := ParseCards(tt.hole)
			if err != nil {
				t.Fatalf("parse hole: %v", err)
			}
			community, err := ParseCards(tt.community)
			if err != nil {
				t.Fatalf("parse community: %v", err)
			}

			result, err := Evaluate(hole, community)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if result.Category != tt.category {
				t.Errorf("category = %v, want %v", result.Category, tt.category)
			}
			if result.Primary != tt.primary {
				t.Errorf("primary = %v, want %v", result.Primary, tt.primary)
			}
		})
	}
}

func TestEvaluateSecondaryAndKickers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		hole      string
		community string
		secondary Rank
		kickers   []Rank
	}{
		{
			name:      "full house pair rank",
			hole:      "Kd Kc",
			community: "Kh Td Tc 2s 4h",
			secondary: Ten,
		},
		{
			name:      "two trips full house picks second trip as pair",
			hole:      "8d 8c",
			community: "8h 5d 5c 5s Ah",
			secondary: Five,
		},
		{
			name:      "two pair keeps best kicker from third pair",
			hole:      "Ad Ac",
			community: "Kh Kd 7c 7s 2h",
			secondary: King,
			kickers:   []Rank{Seven},
		},
		{
			name:      "quads kicker",
			hole:      "Qd Qc",
			community: "Qh Qs 7d 2c Ah",
			kickers:   []Rank{Ace},
		},
		{
			name:      "pair kickers descend",
			hole:      "Jd Jc",
			community: "Ah 8d 6c 4s 2h",
			kickers:   []Rank{Ace, Eight, Six},
		},
		{
			name:      "high card top five",
			hole:      "Ad Jc",
			community: "9h 7d 5c 3s 2h",
			kickers:   []Rank{Jack, Nine, Seven, Five},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hole := MustParseCards(tt.hole)
			community := MustParseCards(tt.community)

			result, err := Evaluate(hole, community)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if tt.secondary != 0 && result.Secondary != tt.secondary {
				t.Errorf("secondary = %v, want %v", result.Secondary, tt.secondary)
			}
			if tt.kickers != nil {
				if len(result.Kickers) != len(tt.kickers) {
					t.Fatalf("kickers = %v, want %v", result.Kickers, tt.kickers)
				}
				for i := range tt.kickers {
					if result.Kickers[i] != tt.kickers[i] {
						t.Errorf("kicker[%d] = %v, want %v", i, result.Kickers[i], tt.kickers[i])
					}
				}
			}
		})
	}
}

func TestEvaluateInputValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		hole      []Card
		community []Card
	}{
		{
			name:      "one hole card",
			hole:      MustParseCards("As"),
			community: MustParseCards("Kd Qh Jc Ts 9d"),
		},
		{
			name:      "three hole cards",
			hole:      MustParseCards("As Kd Qh"),
			community: MustParseCards("Jc Ts 9d 8h 7c"),
		},
		{
			name:      "six community cards",
			hole:      MustParseCards("As Kd"),
			community: MustParseCards("Qh Jc Ts 9d 8h 7c"),
		},
		{
			name:      "too few cards total",
			hole:      MustParseCards("As Kd"),
			community: MustParseCards("Qh Jc"),
		},
		{
			name:      "duplicate across hole and community",
			hole:      MustParseCards("As Kd"),
			community: MustParseCards("As Jc Ts 9d 8h"),
		},
		{
			name:      "invalid card",
			hole:      []Card{Card(0), MustParseCard("Kd")},
			community: MustParseCards("Qh Jc Ts 9d 8h"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Evaluate(tt.hole, tt.community); err == nil {
				t.Error("expected an error, got none")
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	hole := MustParseCards("Ah Kh")
	community := MustParseCards("Qh Jh Th 2c 3d")

	first, err := Evaluate(hole, community)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		again, err := Evaluate(hole, community)
		if err != nil {
			t.Fatal(err)
		}
		if Compare(first, again) != 0 {
			t.Fatal("same cards evaluated to different results")
		}
		if first.Category != again.Category || first.Primary != again.Primary {
			t.Fatal("same cards evaluated to different structures")
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	t.Parallel()

	// Hands listed weakest to strongest. Every later hand must beat
	// every earlier one, and comparison must be antisymmetric.
	board := MustParseCards("Kh 8d 5c")
	type fixture struct {
		name string
		hole string
	}
	ladder := []fixture{
		{"high card", "Ad 9h"},
		{"pair of fives", "6d 5s"},
		{"pair of eights", "8c 4c"},
		{"pair of kings", "Kd 4d"},
		{"two pair", "Kc 8h"},
		{"trips", "5d 5h"},
	}

	results := make([]HandResult, len(ladder))
	for i, f := range ladder {
		hole := MustParseCards(f.hole)
		// Pad the board to five cards with bricks that touch nothing.
		community := append(append([]Card{}, board...), MustParseCards("3s 2d")...)
		r, err := Evaluate(hole, community)
		if err != nil {
			t.Fatalf("%s: %v", f.name, err)
		}
		results[i] = r
	}

	for i := range results {
		for j := range results {
			got := Compare(results[i], results[j])
			switch {
			case i < j && got != -1:
				t.Errorf("%s vs %s = %d, want -1", ladder[i].name, ladder[j].name, got)
			case i > j && got != 1:
				t.Errorf("%s vs %s = %d, want 1", ladder[i].name, ladder[j].name, got)
			case i == j && got != 0:
				t.Errorf("%s vs itself = %d, want 0", ladder[i].name, got)
			}
			if Compare(results[i], results[j]) != -Compare(results[j], results[i]) {
				t.Errorf("comparison of %s and %s is not antisymmetric", ladder[i].name, ladder[j].name)
			}
		}
	}
}

func TestCompareKickers(t *testing.T) {
	t.Parallel()

	community := MustParseCards("Qh Qd 7c 4s 2h")
	better, err := Evaluate(MustParseCards("Ad 3c"), community)
	if err != nil {
		t.Fatal(err)
	}
	worse, err := Evaluate(MustParseCards("Kd 3d"), community)
	if err != nil {
		t.Fatal(err)
	}
	if Compare(better, worse) != 1 {
		t.Error("ace kicker should beat king kicker on a paired board")
	}

	// Identical best five means a tie even with different spare cards.
	tieA, err := Evaluate(MustParseCards("Ad Kd"), MustParseCards("Qh Jh Th 9h 2c"))
	if err != nil {
		t.Fatal(err)
	}
	tieB, err := Evaluate(MustParseCards("Ac Kc"), MustParseCards("Qh Jh Th 9h 2c"))
	if err != nil {
		t.Fatal(err)
	}
	if tieA.Category != tieB.Category || Compare(tieA, tieB) != 0 {
		t.Error("equal best-five hands should tie")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hole      string
		community string
		want      string
	}{
		{"As Ks", "Qs Js Ts 2d 3c", "Royal Flush"},
		{"Kd Kc", "Kh Td Tc 2s 4h", "Full House, Kings over Tens"},
		{"Qd Qc", "Qh Qs 7d 2c 3h", "Four of a Kind, Queens"},
		{"Ad Kc", "Ah Kd 7c 2s 4h", "Two Pair, Aces and Kings"},
		{"Jd Jc", "Ah 8d 6c 4s 2h", "Pair of Jacks"},
		{"9c 8d", "7h 6s 5d Ad Kc", "Straight, Nine high"},
		{"Ad Jc", "9h 7d 5c 3s 2h", "High Card Ace"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			result, err := Evaluate(MustParseCards(tt.hole), MustParseCards(tt.community))
			if err != nil {
				t.Fatal(err)
			}
			if got := result.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

// rankClassOf folds our categories onto the oracle's nine classes, which
// do not split royal flushes out of straight flushes.
func rankClassOf(c HandCategory) int32 {
	switch c {
	case RoyalFlush, StraightFlush:
		return 1
	case FourOfAKind:
		return 2
	case FullHouse:
		return 3
	case Flush:
		return 4
	case Straight:
		return 5
	case ThreeOfAKind:
		return 6
	case TwoPair:
		return 7
	case Pair:
		return 8
	default:
		return 9
	}
}

func toOracle(cards []Card) []chehsunliu.Card {
	out := make([]chehsunliu.Card, len(cards))
	for i, c := range cards {
		out[i] = chehsunliu.NewCard(c.String())
	}
	return out
}

func TestEvaluateAgainstOracle(t *testing.T) {
	t.Parallel()

	rng := randutil.New(20240817)
	const deals = 2000

	for i := 0; i < deals; i++ {
		deck := NewDeck(rng)
		holeA := deck.Deal(2)
		holeB := deck.Deal(2)
		community := deck.Deal(5)

		resA, err := Evaluate(holeA, community)
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}
		resB, err := Evaluate(holeB, community)
		if err != nil {
			t.Fatalf("deal %d: %v", i, err)
		}

		oracleA := chehsunliu.Evaluate(toOracle(append(append([]Card{}, holeA...), community...)))
		oracleB := chehsunliu.Evaluate(toOracle(append(append([]Card{}, holeB...), community...)))

		if got, want := rankClassOf(resA.Category), chehsunliu.RankClass(oracleA); got != want {
			t.Fatalf("deal %d: category class %d disagrees with oracle %d for %v + %v",
				i, got, want, holeA, community)
		}
		if got, want := rankClassOf(resB.Category), chehsunliu.RankClass(oracleB); got != want {
			t.Fatalf("deal %d: category class %d disagrees with oracle %d for %v + %v",
				i, got, want, holeB, community)
		}

		// Oracle ranks ascend toward worse hands, ours ascend toward better.
		var oracleCmp int
		switch {
		case oracleA < oracleB:
			oracleCmp = 1
		case oracleA > oracleB:
			oracleCmp = -1
		}
		if got := Compare(resA, resB); got != oracleCmp {
			t.Fatalf("deal %d: compare = %d, oracle says %d for %v vs %v on %v",
				i, got, oracleCmp, holeA, holeB, community)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	hole := MustParseCards("Ah Kh")
	community := MustParseCards("Qh Jh 9c 8d 2s")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Evaluate(hole, community)
	}
}

func BenchmarkEvaluateSevenRandom(b *testing.B) {
	rng := randutil.New(1)
	deck := NewDeck(rng)
	hole := deck.Deal(2)
	community := deck.Deal(5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Evaluate(hole, community)
	}
}
