package eval

import (
	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
)

// Deuces Wild Bonus classification. Deuces substitute for any card; the
// classifier asks, for each category in precedence order, whether the
// naturals plus available wilds can complete it. Precedence matches common
// Deuces Wild Bonus paytables:
//
//	natural royal > four deuces (+ace) > wild royal > five of a kind splits
//	> straight flush > quads > full house > flush > straight > trips

func classifyDeucesWildBonus(hand []cards.Card) paytable.Category {
	wilds := 0
	var naturalBits int32
	var counts [13]int8
	for _, c := range hand {
		if c.Rank() == cards.RankTwo {
			wilds++
			continue
		}
		naturalBits |= c.BitRank()
		counts[c.Rank()]++
	}

	suited := naturalsSameSuit(hand)

	if wilds == 0 && suited && naturalBits == royalBits {
		return paytable.RoyalFlush
	}

	if wilds == 4 {
		// Exactly one natural remains; an ace kicker pays extra.
		for _, c := range hand {
			if c.Rank() == cards.RankAce {
				return paytable.FourDeucesWithAce
			}
		}
		return paytable.FourDeuces
	}

	if wilds > 0 && suited && canMakeSequence(naturalBits, wilds, royalBits) {
		return paytable.WildRoyalFlush
	}

	if wilds > 0 {
		if cat, ok := fiveOfAKindCategory(&counts, wilds); ok {
			return cat
		}
	}

	if suited && canMakeAnyStraight(naturalBits, wilds) {
		return paytable.StraightFlush
	}

	if canMakeNOfAKind(&counts, wilds, 4) {
		return paytable.FourOfAKind
	}
	if canMakeFullHouse(&counts, wilds) {
		return paytable.FullHouse
	}
	if suited {
		return paytable.Flush
	}
	if canMakeAnyStraight(naturalBits, wilds) {
		return paytable.Straight
	}
	if canMakeNOfAKind(&counts, wilds, 3) {
		return paytable.ThreeOfAKind
	}
	return paytable.Nothing
}

// naturalsSameSuit reports whether all non-deuce cards share a suit. A hand
// of only wilds counts as suited (the wilds choose one).
func naturalsSameSuit(hand []cards.Card) bool {
	var suit int32
	for _, c := range hand {
		if c.Rank() == cards.RankTwo {
			continue
		}
		if suit == 0 {
			suit = c.Suit()
		} else if c.Suit() != suit {
			return false
		}
	}
	return true
}

// canMakeSequence reports whether the naturals plus wilds cover a 5-rank
// sequence. Since wilds+naturals total 5, the bound holds exactly when every
// natural is a distinct rank inside the sequence and wilds cover the rest.
func canMakeSequence(naturalBits int32, wilds int, seq int32) bool {
	present := popcount13(seq & naturalBits)
	return 5-present <= wilds
}

func canMakeAnyStraight(naturalBits int32, wilds int) bool {
	for _, seq := range straightBits {
		if canMakeSequence(naturalBits, wilds, seq) {
			return true
		}
	}
	return false
}

func canMakeNOfAKind(counts *[13]int8, wilds, n int) bool {
	for r := 1; r < 13; r++ {
		if int(counts[r])+wilds >= n {
			return true
		}
	}
	return wilds >= n
}

// canMakeFullHouse checks whether wilds can be split to complete a
// three-of-a-kind plus a pair over two distinct non-deuce ranks.
func canMakeFullHouse(counts *[13]int8, wilds int) bool {
	for r3 := 1; r3 < 13; r3++ {
		need3 := 3 - int(counts[r3])
		if need3 < 0 {
			need3 = 0
		}
		if need3 > wilds {
			continue
		}
		left := wilds - need3
		for r2 := 1; r2 < 13; r2++ {
			if r2 == r3 {
				continue
			}
			need2 := 2 - int(counts[r2])
			if need2 < 0 {
				need2 = 0
			}
			if need2 <= left {
				return true
			}
		}
	}
	return false
}

// fiveOfAKindCategory returns the richest five-of-a-kind split reachable
// with the wilds: aces, then 3s-5s, then 6s-Ks.
func fiveOfAKindCategory(counts *[13]int8, wilds int) (paytable.Category, bool) {
	if int(counts[cards.RankAce])+wilds >= 5 {
		return paytable.FiveAces, true
	}
	for r := cards.RankThree; r <= cards.RankFive; r++ {
		if int(counts[r])+wilds >= 5 {
			return paytable.FiveThreesToFives, true
		}
	}
	for r := cards.RankFive + 1; r <= cards.RankKing; r++ {
		if int(counts[r])+wilds >= 5 {
			return paytable.FiveSixesToKings, true
		}
	}
	return paytable.Nothing, false
}
