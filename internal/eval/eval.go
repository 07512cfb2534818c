// Package eval classifies 5-card video-poker hands into paytable categories.
//
// Classification is pure and total: every 5-card hand maps to exactly one
// category under a ruleset, chosen by a fixed precedence order (a hand that
// is both a straight and a flush classifies as a straight flush, never as
// either part). Bonus multipliers never change classification; they scale
// the payout afterwards.
package eval

import (
	"fmt"

	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
)

// Straight rank-bit patterns, wheel first. Bit 0 is the deuce, bit 12 the ace.
var straightBits = [10]int32{
	0x100F, // A 2 3 4 5 (wheel)
	0x001F, // 2..6
	0x003E, // 3..7
	0x007C, // 4..8
	0x00F8, // 5..9
	0x01F0, // 6..T
	0x03E0, // 7..J
	0x07C0, // 8..Q
	0x0F80, // 9..K
	0x1F00, // T..A (royal)
}

const royalBits = 0x1F00

// Evaluator classifies hands under one ruleset.
type Evaluator struct {
	ruleset paytable.Ruleset
}

// New returns an evaluator for the ruleset.
func New(rs paytable.Ruleset) (*Evaluator, error) {
	switch rs {
	case paytable.RulesetJacksOrBetter, paytable.RulesetDeucesWildBonus:
		return &Evaluator{ruleset: rs}, nil
	default:
		return nil, fmt.Errorf("eval: unknown ruleset %q", rs)
	}
}

// Ruleset returns the ruleset this evaluator classifies under.
func (e *Evaluator) Ruleset() paytable.Ruleset {
	return e.ruleset
}

// Evaluate classifies a 5-card hand.
func (e *Evaluator) Evaluate(hand []cards.Card) (paytable.Category, error) {
	if len(hand) != 5 {
		return 0, fmt.Errorf("eval: hand must have exactly 5 cards, got %d", len(hand))
	}
	return e.Classify(hand), nil
}

// Classify is the unchecked hot-path form of Evaluate. The caller guarantees
// a 5-card hand.
func (e *Evaluator) Classify(hand []cards.Card) paytable.Category {
	if e.ruleset == paytable.RulesetDeucesWildBonus {
		return classifyDeucesWildBonus(hand)
	}
	return classifyJacksOrBetter(hand)
}

// Key returns an equivalence-class key: two hands with the same key always
// classify identically under this ruleset. The key combines the rank prime
// product with the ruleset's flush condition, so the optimizer can memoize
// categories by integer key instead of raw card identity.
func (e *Evaluator) Key(hand []cards.Card) uint64 {
	suited := int64(0)
	if e.ruleset == paytable.RulesetDeucesWildBonus {
		if naturalsSameSuit(hand) {
			suited = 1
		}
	} else if isFlush(hand) {
		suited = 1
	}
	return uint64(cards.PrimeProduct(hand)<<1 | suited)
}

func isFlush(hand []cards.Card) bool {
	return hand[0]&hand[1]&hand[2]&hand[3]&hand[4]&0xF000 != 0
}

func popcount13(bits int32) int {
	n := 0
	for bits != 0 {
		bits &= bits - 1
		n++
	}
	return n
}

func isStraightBits(bits int32) bool {
	for _, s := range straightBits {
		if bits == s {
			return true
		}
	}
	return false
}

func classifyJacksOrBetter(hand []cards.Card) paytable.Category {
	var counts [13]int8
	for _, c := range hand {
		counts[c.Rank()]++
	}
	bits := cards.RankBits(hand)
	flush := isFlush(hand)
	straight := popcount13(bits) == 5 && isStraightBits(bits)

	if flush && straight {
		if bits == royalBits {
			return paytable.RoyalFlush
		}
		return paytable.StraightFlush
	}

	var quadRank, tripsRank int32 = -1, -1
	var pairRanks []int32
	var kickerRank int32 = -1
	for r := int32(0); r < 13; r++ {
		switch counts[r] {
		case 4:
			quadRank = r
		case 3:
			tripsRank = r
		case 2:
			pairRanks = append(pairRanks, r)
		}
	}

	if quadRank >= 0 {
		for r := int32(0); r < 13; r++ {
			if counts[r] == 1 {
				kickerRank = r
			}
		}
		return quadCategory(quadRank, kickerRank)
	}

	if tripsRank >= 0 && len(pairRanks) == 1 {
		return paytable.FullHouse
	}
	if flush {
		return paytable.Flush
	}
	if straight {
		return paytable.Straight
	}
	if tripsRank >= 0 {
		return paytable.ThreeOfAKind
	}

	switch len(pairRanks) {
	case 2:
		return paytable.TwoPair
	case 1:
		if pairRanks[0] >= cards.RankJack {
			return paytable.JacksOrBetterPair
		}
	}
	return paytable.Nothing
}

// quadCategory applies the bonus-poker quad splits. Aces with a 2-4 kicker
// and 2-4 quads with an ace-through-4 kicker are the kicker-qualified
// categories richer variants pay separately; plain tables simply assign them
// the same payout as the base quads.
func quadCategory(quadRank, kickerRank int32) paytable.Category {
	lowKicker := kickerRank >= cards.RankTwo && kickerRank <= cards.RankFour

	if quadRank == cards.RankAce {
		if lowKicker {
			return paytable.FourAcesWithKicker
		}
		return paytable.FourAces
	}
	if quadRank <= cards.RankFour {
		if lowKicker || kickerRank == cards.RankAce {
			return paytable.FourLowWithKicker
		}
		return paytable.FourLow
	}
	return paytable.FourOfAKind
}
