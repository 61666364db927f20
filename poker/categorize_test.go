package poker

import "testing"

func TestCategorizeHoleCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		want  HoleCardCategory
	}{
		{"pocket aces", "As Ah", CategoryPremium},
		{"pocket queens", "Qd Qc", CategoryPremium},
		{"pocket jacks", "Js Jc", CategoryPremium},
		{"ace king offsuit", "Ad Kc", CategoryPremium},
		{"ace king suited", "As Ks", CategoryPremium},
		{"pocket tens", "Td Tc", CategoryStrong},
		{"ace queen", "Ah Qd", CategoryStrong},
		{"ace jack", "Ac Jd", CategoryStrong},
		{"pocket nines", "9s 9d", CategoryMedium},
		{"pocket sevens", "7s 7d", CategoryMedium},
		{"suited broadway", "Ks Qs", CategoryMedium},
		{"suited king ten", "Kh Th", CategoryMedium},
		{"pocket sixes", "6s 6d", CategoryWeak},
		{"pocket deuces", "2s 2d", CategoryWeak},
		{"suited connector", "8h 7h", CategoryWeak},
		{"suited one gapper", "9c 7c", CategoryWeak},
		{"offsuit connector", "8h 7d", CategoryTrash},
		{"offsuit junk", "9d 2c", CategoryTrash},
		{"suited junk", "Kd 4d", CategoryTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.cards)
			if got := CategorizeHoleCards(cards[0], cards[1]); got != tt.want {
				t.Errorf("CategorizeHoleCards(%s) = %v, want %v", tt.cards, got, tt.want)
			}
		})
	}
}

func TestCategorizeHoleCardsOrderIndependent(t *testing.T) {
	t.Parallel()

	a, b := MustParseCard("Ad"), MustParseCard("Kc")
	if CategorizeHoleCards(a, b) != CategorizeHoleCards(b, a) {
		t.Error("categorization should not depend on card order")
	}
}

func TestCategorizeHoleCardsInvalid(t *testing.T) {
	t.Parallel()

	if got := CategorizeHoleCards(Card(0), MustParseCard("As")); got != CategoryUnknown {
		t.Errorf("invalid card should categorize as unknown, got %v", got)
	}
}
