package strategy

import (
	"sort"

	"github.com/vpresearch/vipor/internal/cards"
)

// Suit relabeling never changes a hold's expectation: swapping, say, spades
// and hearts everywhere maps each replacement draw to an equally likely one
// with the same payout. canonicalize picks a fixed representative of each
// class — the suit permutation and card order minimizing a packed key — so
// isomorphic hands share one cache entry.
//
// The returned order maps canonical positions back to dealt positions:
// order[i] is the dealt index of the card at canonical position i. Hold
// masks over dealt positions translate through it with canonicalMask.

var suitPerms [24][4]int32

func init() {
	base := [4]int32{0, 1, 2, 3}
	n := 0
	var permute func(k int)
	permute = func(k int) {
		if k == 4 {
			suitPerms[n] = base
			n++
			return
		}
		for i := k; i < 4; i++ {
			base[k], base[i] = base[i], base[k]
			permute(k + 1)
			base[k], base[i] = base[i], base[k]
		}
	}
	permute(0)
}

// suitIndex maps the one-hot suit bit (1,2,4,8) to 0..3.
func suitIndex(suit int32) int32 {
	switch suit {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}

var deckByIndex []cards.Card

func init() {
	deckByIndex = cards.FullDeck() // fixed order: suit index * 13 + rank
}

func canonicalize(hand []cards.Card) (uint64, [5]int, [5]cards.Card) {
	type slot struct {
		code int32 // rank<<2 | permuted suit index
		pos  int   // dealt position
	}

	bestKey := ^uint64(0)
	var bestSlots [5]slot

	var slots [5]slot
	for _, perm := range suitPerms {
		for i, c := range hand {
			slots[i] = slot{code: c.Rank()<<2 | perm[suitIndex(c.Suit())], pos: i}
		}
		sort.Slice(slots[:], func(a, b int) bool { return slots[a].code < slots[b].code })

		key := uint64(0)
		for _, s := range slots {
			key = key<<6 | uint64(s.code)
		}
		if key < bestKey {
			bestKey = key
			bestSlots = slots
		}
	}

	var order [5]int
	var canon [5]cards.Card
	for i, s := range bestSlots {
		order[i] = s.pos
		canon[i] = deckByIndex[(s.code&3)*13+(s.code>>2)]
	}
	return bestKey, order, canon
}

// canonicalMask translates a hold mask over dealt positions into the
// equivalent mask over canonical positions.
func canonicalMask(mask int, order [5]int) int {
	out := 0
	for i := 0; i < 5; i++ {
		if mask&(1<<order[i]) != 0 {
			out |= 1 << i
		}
	}
	return out
}

// dealtMask is the inverse of canonicalMask.
func dealtMask(mask int, order [5]int) int {
	out := 0
	for i := 0; i < 5; i++ {
		if mask&(1<<i) != 0 {
			out |= 1 << order[i]
		}
	}
	return out
}
