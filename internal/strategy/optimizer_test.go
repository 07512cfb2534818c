package strategy

import (
	"context"
	"math"
	"testing"

	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
)

func mustHand(t *testing.T, s string) []cards.Card {
	t.Helper()
	hand, err := cards.ParseHand(s)
	if err != nil {
		t.Fatalf("ParseHand(%q): %v", s, err)
	}
	return hand
}

func jobOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	opt, err := NewOptimizer(paytable.JacksOrBetter96())
	if err != nil {
		t.Fatal(err)
	}
	return opt
}

func TestHoldAllEVEqualsPayout(t *testing.T) {
	opt := jobOptimizer(t)
	pt := opt.PayTable()

	tests := []struct {
		hand string
		cat  paytable.Category
	}{
		{"As Ks Qs Js Ts", paytable.RoyalFlush},
		{"As Ah Ad Ks Kh", paytable.FullHouse},
		{"9s 9h 5d 5c As", paytable.TwoPair},
		{"As Kh 9d 7c 2s", paytable.Nothing},
	}
	for _, tt := range tests {
		ev, err := opt.HoldEV(mustHand(t, tt.hand), MaskAll)
		if err != nil {
			t.Fatalf("HoldEV(%s): %v", tt.hand, err)
		}
		if want := float64(pt.Payout(tt.cat)); ev != want {
			t.Errorf("HoldEV(%s, all) = %v, want %v", tt.hand, ev, want)
		}
	}
}

func TestBestHoldPatRoyal(t *testing.T) {
	opt := jobOptimizer(t)
	dec, err := opt.BestHold(mustHand(t, "As Ks Qs Js Ts"))
	if err != nil {
		t.Fatal(err)
	}
	if dec.Mask != MaskAll {
		t.Errorf("best hold for pat royal = %05b, want all five", dec.Mask)
	}
	if dec.EV != 800 {
		t.Errorf("pat royal EV = %v, want 800", dec.EV)
	}
}

func TestBestHoldHighPair(t *testing.T) {
	opt := jobOptimizer(t)
	dec, err := opt.BestHold(mustHand(t, "Js Jh 9d 7c 2s"))
	if err != nil {
		t.Fatal(err)
	}
	if dec.Mask != 0b00011 {
		t.Errorf("best hold = %05b, want the two jacks", dec.Mask)
	}
	// Holding a high pair in 9/6 Jacks or Better is worth a little over
	// 1.5 bet units.
	if dec.EV < 1.5 || dec.EV > 1.6 {
		t.Errorf("high-pair EV = %v, want ~1.54", dec.EV)
	}
}

func TestBestHoldFourToRoyalOverFlush(t *testing.T) {
	// A dealt flush that contains four cards of a royal: the royal chase
	// pays more in expectation than the pat flush. A standard chart line.
	opt := jobOptimizer(t)
	dec, err := opt.BestHold(mustHand(t, "As Ks Qs Js 9s"))
	if err != nil {
		t.Fatal(err)
	}
	if dec.Mask != 0b01111 {
		t.Errorf("best hold = %05b, want the four royal cards", dec.Mask)
	}
	flushEV, err := opt.HoldEV(mustHand(t, "As Ks Qs Js 9s"), MaskAll)
	if err != nil {
		t.Fatal(err)
	}
	if dec.EV <= flushEV {
		t.Errorf("royal chase EV %v not above pat flush EV %v", dec.EV, flushEV)
	}
}

func TestHoldEVSymmetricSingles(t *testing.T) {
	// Spades and hearts appear only on the aces, so swapping those suits
	// fixes the dealt set and maps one single-ace hold onto the other. The
	// expectations must be exactly equal, and the tie-break must order the
	// hold that is lower in canonical orientation — here the ace of spades
	// at dealt position 0 — first.
	opt := jobOptimizer(t)
	hand := mustHand(t, "As Ah 9d 7c 2c")

	evA, err := opt.HoldEV(hand, 0b00001)
	if err != nil {
		t.Fatal(err)
	}
	evB, err := opt.HoldEV(hand, 0b00010)
	if err != nil {
		t.Fatal(err)
	}
	if evA != evB {
		t.Fatalf("isomorphic single-card holds differ: %v vs %v", evA, evB)
	}

	holds, err := opt.Holds(hand)
	if err != nil {
		t.Fatal(err)
	}
	posA, posB := -1, -1
	for i, dec := range holds {
		switch dec.Mask {
		case 0b00001:
			posA = i
		case 0b00010:
			posB = i
		}
	}
	if posA > posB {
		t.Errorf("tie-break ordered mask 2 (pos %d) before mask 1 (pos %d)", posB, posA)
	}
}

func TestTieBreakFollowsCanonicalOrientation(t *testing.T) {
	// A solved table stores one decision per isomorphism class, so exact-EV
	// ties must resolve the same way for every dealt orientation of the
	// class. The tied single-ace holds make that observable: the winning
	// hold follows the ace of spades to whatever slot it was dealt in,
	// rather than always picking the lower dealt mask.
	opt := jobOptimizer(t)

	holdOrder := func(hand []cards.Card, a, b int) bool {
		t.Helper()
		holds, err := opt.Holds(hand)
		if err != nil {
			t.Fatal(err)
		}
		posA, posB := -1, -1
		for i, dec := range holds {
			switch dec.Mask {
			case a:
				posA = i
			case b:
				posB = i
			}
		}
		if posA < 0 || posB < 0 {
			t.Fatalf("masks %05b and %05b missing from holds", a, b)
		}
		return posA < posB
	}

	spadesFirst := mustHand(t, "As Ah 9d 7c 2c")
	if !holdOrder(spadesFirst, 0b00001, 0b00010) {
		t.Error("spade-ace hold not preferred with the spade at position 0")
	}
	heartsFirst := mustHand(t, "Ah As 9d 7c 2c")
	if !holdOrder(heartsFirst, 0b00010, 0b00001) {
		t.Error("spade-ace hold not preferred with the spade at position 1")
	}

	// A table solved for the class and the optimizer agree on every
	// orientation.
	for _, hand := range [][]cards.Card{spadesFirst, heartsFirst} {
		key, _, canon := canonicalize(hand)
		table := &Table{
			payName: opt.PayTable().Name,
			ruleset: opt.PayTable().Ruleset,
			entries: map[uint64]tableEntry{key: solveEntry(opt, canon)},
		}
		fromTable, err := table.Hold(hand)
		if err != nil {
			t.Fatal(err)
		}
		dec, err := opt.BestHold(hand)
		if err != nil {
			t.Fatal(err)
		}
		if fromTable != dec.Mask {
			t.Errorf("table hold %05b disagrees with BestHold %05b for %s",
				fromTable, dec.Mask, cards.HandString(hand))
		}
	}
}

func TestHoldsCountAndOrdering(t *testing.T) {
	opt := jobOptimizer(t)
	holds, err := opt.Holds(mustHand(t, "Js Jh 9d 7c 2s"))
	if err != nil {
		t.Fatal(err)
	}
	if len(holds) != 32 {
		t.Fatalf("got %d holds, want 32", len(holds))
	}
	for i := 1; i < len(holds); i++ {
		if holds[i].EV > holds[i-1].EV {
			t.Fatalf("holds not ordered: EV %v at %d above %v at %d",
				holds[i].EV, i, holds[i-1].EV, i-1)
		}
	}
	if holds[0].Mask != 0b00011 {
		t.Errorf("top hold = %05b, want the two jacks", holds[0].Mask)
	}
}

func TestIsomorphicHandsShareDecision(t *testing.T) {
	opt := jobOptimizer(t)

	a := mustHand(t, "Js Jh 9d 7c 2s")
	b := mustHand(t, "Jd Jc 9h 7s 2d") // same hand under a suit relabeling
	decA, err := opt.BestHold(a)
	if err != nil {
		t.Fatal(err)
	}
	decB, err := opt.BestHold(b)
	if err != nil {
		t.Fatal(err)
	}
	if decA.Mask != decB.Mask || decA.EV != decB.EV {
		t.Errorf("isomorphic hands diverge: %+v vs %+v", decA, decB)
	}
}

func TestBestHoldRejectsBadHands(t *testing.T) {
	opt := jobOptimizer(t)
	if _, err := opt.BestHold(mustHand(t, "As Ks Qs Js Ts")[:4]); err == nil {
		t.Error("4-card hand accepted")
	}
	dup := mustHand(t, "As Ks Qs Js Ts")
	dup[4] = dup[0]
	if _, err := opt.BestHold(dup); err == nil {
		t.Error("duplicate card accepted")
	}
	if _, err := opt.HoldEV(mustHand(t, "As Ks Qs Js Ts"), 32); err == nil {
		t.Error("out-of-range mask accepted")
	}
}

func TestDiscardAllEVIsPositive(t *testing.T) {
	// Redrawing five fresh cards in 9/6 Jacks or Better returns roughly a
	// third of the bet; it must be strictly positive and below 1.
	opt := jobOptimizer(t)
	ev, err := opt.HoldEV(mustHand(t, "As Kh 9d 7c 2s"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if ev <= 0 || ev >= 1 || math.IsNaN(ev) {
		t.Errorf("discard-all EV = %v, want in (0, 1)", ev)
	}
}

func TestCanonicalizeGroupsIsomorphs(t *testing.T) {
	a := mustHand(t, "As Ks Qs Js 9s")
	b := mustHand(t, "Ah Kh Qh Jh 9h")
	keyA, _, _ := canonicalize(a)
	keyB, _, _ := canonicalize(b)
	if keyA != keyB {
		t.Error("suit-rotated flushes have different canonical keys")
	}

	c := mustHand(t, "Ah Ks Qs Js 9s") // breaks the flush
	keyC, _, _ := canonicalize(c)
	if keyC == keyA {
		t.Error("flush and broken flush share a canonical key")
	}
}

func TestMaskTranslationRoundTrip(t *testing.T) {
	hand := mustHand(t, "9d Js 2s Jh 7c")
	_, order, _ := canonicalize(hand)
	for mask := 0; mask <= MaskAll; mask++ {
		if got := dealtMask(canonicalMask(mask, order), order); got != mask {
			t.Fatalf("mask %05b round-trips to %05b", mask, got)
		}
	}
}

func TestForEachCombination(t *testing.T) {
	count := 0
	forEachCombination(47, 2, func([]int) { count++ })
	if count != 1081 { // C(47,2)
		t.Errorf("C(47,2) enumeration visited %d subsets, want 1081", count)
	}
	last := -1
	forEachCombination(5, 5, func(idx []int) {
		last = idx[4]
	})
	if last != 4 {
		t.Errorf("C(5,5) enumeration malformed, last index %d", last)
	}
}

func TestBuildTableCancellation(t *testing.T) {
	opt := jobOptimizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildTable(ctx, opt, 2); err == nil {
		t.Error("canceled build returned no error")
	}
}

func TestTableSnapshotRoundTrip(t *testing.T) {
	opt := jobOptimizer(t)
	hand := mustHand(t, "Js Jh 9d 7c 2s")
	key, _, canon := canonicalize(hand)
	entry := solveEntry(opt, canon)

	snap := &Snapshot{
		PayTable: "9/6 Jacks or Better",
		Ruleset:  string(paytable.RulesetJacksOrBetter),
		Overall:  0.9954,
		Entries:  []SnapshotEntry{{Key: key, Mask: entry.mask, EV: entry.ev}},
	}
	table, err := TableFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}

	mask, err := table.Hold(hand)
	if err != nil {
		t.Fatal(err)
	}
	if mask != 0b00011 {
		t.Errorf("table hold = %05b, want the two jacks", mask)
	}

	// An isomorphic hand with the pair at different dealt positions maps to
	// the same class and translates to its own positions.
	iso := mustHand(t, "9h 7s Jd 2c Jc")
	mask, err = table.Hold(iso)
	if err != nil {
		t.Fatal(err)
	}
	if mask != 0b10100 {
		t.Errorf("isomorphic table hold = %05b, want the two jacks' positions", mask)
	}

	// Unknown class is an error, not a silent default.
	if _, err := table.Hold(mustHand(t, "As Kh 9d 7c 2s")); err == nil {
		t.Error("missing class lookup succeeded")
	}

	if _, err := TableFromSnapshot(&Snapshot{}); err == nil {
		t.Error("empty snapshot accepted")
	}
	if _, err := TableFromSnapshot(&Snapshot{Entries: []SnapshotEntry{{Mask: 40}}}); err == nil {
		t.Error("out-of-range mask accepted")
	}
}
