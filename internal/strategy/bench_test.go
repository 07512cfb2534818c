package strategy

import (
	"testing"

	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
)

// BenchmarkBestHoldColdCache measures a full 32-mask solve with no memoized
// classes, the dominant cost of a table build.
func BenchmarkBestHoldColdCache(b *testing.B) {
	hand, err := cards.ParseHand("2c 7d 9h Js Kh")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		opt, err := NewOptimizer(paytable.JacksOrBetter96())
		if err != nil {
			b.Fatal(err)
		}
		if _, err := opt.BestHold(hand); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBestHoldWarmCache measures the memoized path a simulation worker
// hits once the hand's equivalence class has been solved.
func BenchmarkBestHoldWarmCache(b *testing.B) {
	opt, err := NewOptimizer(paytable.JacksOrBetter96())
	if err != nil {
		b.Fatal(err)
	}
	hand, err := cards.ParseHand("2c 7d 9h Js Kh")
	if err != nil {
		b.Fatal(err)
	}
	if _, err := opt.BestHold(hand); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := opt.BestHold(hand); err != nil {
			b.Fatal(err)
		}
	}
}
