package paytable

// JacksOrBetter96 is the full-pay "9/6" Jacks or Better table (9x full
// house, 6x flush). Optimal-play return for this table is the widely
// published 99.54% reference figure. Quad splits all pay 25 since plain
// Jacks or Better does not distinguish them.
func JacksOrBetter96() *PayTable {
	pt, err := New("9/6 Jacks or Better", RulesetJacksOrBetter, 1, map[Category]int{
		RoyalFlush:         800,
		StraightFlush:      50,
		FourAcesWithKicker: 25,
		FourAces:           25,
		FourLowWithKicker:  25,
		FourLow:            25,
		FourOfAKind:        25,
		FullHouse:          9,
		Flush:              6,
		Straight:           4,
		ThreeOfAKind:       3,
		TwoPair:            2,
		JacksOrBetterPair:  1,
		Nothing:            0,
	})
	if err != nil {
		panic(err)
	}
	return pt
}

// BonusPoker85 is the full-pay "8/5" Bonus Poker table. The quad splits pay
// 80/40/25; kicker categories pay the same as their base quads since classic
// Bonus Poker has no kicker bonus.
func BonusPoker85() *PayTable {
	pt, err := New("8/5 Bonus Poker", RulesetJacksOrBetter, 1, map[Category]int{
		RoyalFlush:         800,
		StraightFlush:      50,
		FourAcesWithKicker: 80,
		FourAces:           80,
		FourLowWithKicker:  40,
		FourLow:            40,
		FourOfAKind:        25,
		FullHouse:          8,
		Flush:              5,
		Straight:           4,
		ThreeOfAKind:       3,
		TwoPair:            2,
		JacksOrBetterPair:  1,
		Nothing:            0,
	})
	if err != nil {
		panic(err)
	}
	return pt
}

// DeucesWildBonus is a common Deuces Wild Bonus Poker table.
func DeucesWildBonus() *PayTable {
	pt, err := New("Deuces Wild Bonus", RulesetDeucesWildBonus, 1, map[Category]int{
		RoyalFlush:        800,
		FourDeucesWithAce: 400,
		FourDeuces:        200,
		WildRoyalFlush:    25,
		FiveAces:          80,
		FiveThreesToFives: 40,
		FiveSixesToKings:  20,
		StraightFlush:     9,
		FourOfAKind:       4,
		FullHouse:         4,
		Flush:             3,
		Straight:          1,
		ThreeOfAKind:      1,
		Nothing:           0,
	})
	if err != nil {
		panic(err)
	}
	return pt
}

// Builtin returns a built-in table by name, or nil.
func Builtin(name string) *PayTable {
	switch name {
	case "9-6-job", "job":
		return JacksOrBetter96()
	case "8-5-bonus", "bonus":
		return BonusPoker85()
	case "deuces-bonus":
		return DeucesWildBonus()
	default:
		return nil
	}
}

// BuiltinNames lists the built-in paytable identifiers.
func BuiltinNames() []string {
	return []string{"9-6-job", "8-5-bonus", "deuces-bonus"}
}
