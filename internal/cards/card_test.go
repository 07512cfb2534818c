package cards

import "testing"

func TestParseCard(t *testing.T) {
	tests := []struct {
		in      string
		rank    int32
		suit    int32
		wantErr bool
	}{
		{in: "As", rank: RankAce, suit: 1},
		{in: "2c", rank: RankTwo, suit: 8},
		{in: "Th", rank: RankTen, suit: 2},
		{in: "jd", rank: RankJack, suit: 4},
		{in: "KS", rank: RankKing, suit: 1},
		{in: "1s", wantErr: true},
		{in: "Ax", wantErr: true},
		{in: "", wantErr: true},
		{in: "10h", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCard(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCard(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCard(%q): %v", tt.in, err)
			}
			if c.Rank() != tt.rank || c.Suit() != tt.suit {
				t.Errorf("ParseCard(%q) = rank %d suit %d, want rank %d suit %d",
					tt.in, c.Rank(), c.Suit(), tt.rank, tt.suit)
			}
		})
	}
}

func TestCardStringRoundTrip(t *testing.T) {
	for _, c := range FullDeck() {
		parsed, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("round trip of %s changed card", c)
		}
	}
}

func TestParseHand(t *testing.T) {
	hand, err := ParseHand("As Ks Qs Js Ts")
	if err != nil {
		t.Fatalf("ParseHand: %v", err)
	}
	if len(hand) != 5 {
		t.Fatalf("got %d cards", len(hand))
	}

	if _, err := ParseHand("As Ks Qs Js"); err == nil {
		t.Error("4-card hand accepted")
	}
	if _, err := ParseHand("As As Qs Js Ts"); err == nil {
		t.Error("duplicate card accepted")
	}
	if _, err := ParseHand("As,Ks,Qs,Js,Ts"); err != nil {
		t.Errorf("comma-separated hand rejected: %v", err)
	}
}

func TestFullDeckUnique(t *testing.T) {
	seen := map[Card]bool{}
	for _, c := range FullDeck() {
		if seen[c] {
			t.Fatalf("duplicate card %s in full deck", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Fatalf("full deck has %d unique cards", len(seen))
	}
}

func TestRemaining(t *testing.T) {
	hand, _ := ParseHand("As Ks Qs Js Ts")
	rest := Remaining(hand)
	if len(rest) != 47 {
		t.Fatalf("Remaining returned %d cards, want 47", len(rest))
	}
	for _, c := range rest {
		for _, h := range hand {
			if c == h {
				t.Errorf("held card %s present in remainder", c)
			}
		}
	}
}

func TestPrimeProductRankEquivalence(t *testing.T) {
	// Same rank multiset in different suits shares a product.
	a, _ := ParseHand("As Ah 2c 3d 4s")
	b, _ := ParseHand("Ad Ac 2s 3h 4c")
	if PrimeProduct(a) != PrimeProduct(b) {
		t.Error("rank-identical hands have different prime products")
	}

	c, _ := ParseHand("As Ah 2c 3d 5s")
	if PrimeProduct(a) == PrimeProduct(c) {
		t.Error("rank-distinct hands share a prime product")
	}
}
