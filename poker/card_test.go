package poker

import (
	"encoding/json"
	"math/bits"
	"testing"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()

	aceSpades := NewCard(Ace, Spades)
	if aceSpades.Rank() != Ace {
		t.Errorf("Expected rank Ace, got %d", aceSpades.Rank())
	}
	if aceSpades.Suit() != Spades {
		t.Errorf("Expected suit Spades, got %d", aceSpades.Suit())
	}
	if aceSpades.String() != "As" {
		t.Errorf("Expected 'As', got %s", aceSpades.String())
	}

	twoClubs := NewCard(Two, Clubs)
	if twoClubs.String() != "2c" {
		t.Errorf("Expected '2c', got %s", twoClubs.String())
	}

	if c := NewCard(Rank(1), Spades); c != 0 {
		t.Errorf("rank below two should produce the zero card, got %v", c)
	}
	if c := NewCard(Rank(15), Spades); c != 0 {
		t.Errorf("rank above ace should produce the zero card, got %v", c)
	}
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "king of diamonds", input: "Kd", wantCard: NewCard(King, Diamonds)},
		{name: "ten with T notation", input: "Tc", wantCard: NewCard(Ten, Clubs)},
		{name: "lowercase accepted", input: "qh", wantCard: NewCard(Queen, Hearts)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
	}

	for _, testCase := range tests {
		tc := testCase
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCard(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if !tc.wantErr && card != tc.wantCard {
				t.Errorf("ParseCard(%q) = %v, want %v", tc.input, card, tc.wantCard)
			}
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("As Kh 7d")
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0] != MustParseCard("As") || cards[2] != MustParseCard("7d") {
		t.Errorf("unexpected cards %v", cards)
	}

	if _, err := ParseCards("As Zk"); err == nil {
		t.Error("expected error for invalid card in list")
	}
}

func TestAll52Cards(t *testing.T) {
	t.Parallel()
	cards := make(map[string]bool)

	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			card := NewCard(rank, suit)
			str := card.String()

			if cards[str] {
				t.Errorf("Duplicate card: %s", str)
			}
			cards[str] = true

			parsed, err := ParseCard(str)
			if err != nil {
				t.Errorf("Failed to parse %s: %v", str, err)
			}
			if parsed != card {
				t.Errorf("Round-trip failed for %s", str)
			}
		}
	}

	if len(cards) != 52 {
		t.Errorf("Expected 52 unique cards, got %d", len(cards))
	}
}

func TestCardTextMarshal(t *testing.T) {
	t.Parallel()

	hole := []Card{MustParseCard("As"), MustParseCard("Td")}
	data, err := json.Marshal(hole)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["As","Td"]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var back []Card
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0] != hole[0] || back[1] != hole[1] {
		t.Errorf("round-trip mismatch: %v", back)
	}

	var invalid Card
	if _, err := json.Marshal(invalid); err == nil {
		t.Error("expected error marshaling the zero card")
	}
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	aceSpades := MustParseCard("As")
	kingHearts := MustParseCard("Kh")
	queenDiamonds := MustParseCard("Qd")

	hand := NewHand(aceSpades, kingHearts)

	if !hand.HasCard(aceSpades) {
		t.Error("Hand should contain Ace of Spades")
	}
	if !hand.HasCard(kingHearts) {
		t.Error("Hand should contain King of Hearts")
	}
	if hand.HasCard(queenDiamonds) {
		t.Error("Hand should not contain Queen of Diamonds")
	}

	if hand.CountCards() != 2 {
		t.Errorf("Hand should have 2 cards, got %d", hand.CountCards())
	}

	hand.AddCard(queenDiamonds)
	if !hand.HasCard(queenDiamonds) {
		t.Error("Hand should now contain Queen of Diamonds")
	}
	if hand.CountCards() != 3 {
		t.Errorf("Hand should have 3 cards, got %d", hand.CountCards())
	}

	cards := hand.Cards()
	if len(cards) != 3 {
		t.Fatalf("Cards() should expand to 3 cards, got %d", len(cards))
	}
	for _, c := range cards {
		if !hand.HasCard(c) {
			t.Errorf("expanded card %s missing from hand", c)
		}
	}
}

func TestHandBitset(t *testing.T) {
	t.Parallel()
	aceSpades := MustParseCard("As")
	aceHearts := MustParseCard("Ah")
	twoClubs := MustParseCard("2c")

	if bits.OnesCount64(uint64(aceSpades)) != 1 {
		t.Error("Card should be a single bit")
	}

	if aceSpades&aceHearts != 0 {
		t.Error("Different cards should not share bits")
	}
	if aceSpades&twoClubs != 0 {
		t.Error("Different cards should not share bits")
	}

	combined := Hand(aceSpades) | Hand(aceHearts) | Hand(twoClubs)
	if combined.CountCards() != 3 {
		t.Errorf("Combined hand should have 3 cards, got %d", combined.CountCards())
	}
}

func TestSuitMask(t *testing.T) {
	t.Parallel()
	cards := []Card{}
	for rank := Two; rank <= Ace; rank++ {
		cards = append(cards, NewCard(rank, Spades))
	}
	hand := NewHand(cards...)

	if mask := hand.SuitMask(Spades); mask != 0x1FFF {
		t.Errorf("Expected all spades, got mask %016b", mask)
	}
	if hand.SuitMask(Hearts) != 0 {
		t.Error("Hearts should be empty")
	}
	if hand.RankMask() != 0x1FFF {
		t.Error("Rank mask should cover all thirteen ranks")
	}
}

func BenchmarkCardString(b *testing.B) {
	card := NewCard(Ace, Spades)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = card.String()
	}
}

func BenchmarkParseCard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseCard("As")
	}
}
