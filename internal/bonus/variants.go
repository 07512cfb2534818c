package bonus

import "github.com/vpresearch/vipor/internal/paytable"

// Preset variant configs. The production machines' trigger tables are
// proprietary; these defaults are research approximations (Hot Roll rate and
// dice model follow the figures commonly cited for the IGT original: one
// roll per six hands on average, 2d6 multiplier). Override any field via
// YAML for exact modeling.

// HotRoll triggers a 2d6 multiplier roll roughly once per six hands,
// applied to the triggering round's payout.
func HotRoll() *Config {
	return &Config{
		Variant:         "hot_roll",
		TierMultipliers: []int{1},
		TriggerChance:   1.0 / 6.0,
		DiceMultiplier:  true,
		RollsPerTrigger: 1,
	}
}

// SuperHotRoll banks three rolls per trigger, so a single trigger
// multiplies the next three rounds.
func SuperHotRoll() *Config {
	return &Config{
		Variant:         "super_hot_roll",
		TierMultipliers: []int{1},
		TriggerChance:   1.0 / 12.0,
		DiceMultiplier:  true,
		RollsPerTrigger: 3,
	}
}

// UltimateX awards a multiplier for the next hand based on this hand's
// outcome category. The map follows the commonly published 4x/12x ladder
// shape for quarter Ultimate X Jacks or Better.
func UltimateX() *Config {
	return &Config{
		Variant:         "ultimate_x",
		TierMultipliers: []int{1},
		NextHand: map[paytable.Category]int{
			paytable.JacksOrBetterPair:  2,
			paytable.TwoPair:            3,
			paytable.ThreeOfAKind:       4,
			paytable.Straight:           6,
			paytable.Flush:              7,
			paytable.FullHouse:          12,
			paytable.FourOfAKind:        2,
			paytable.FourLow:            2,
			paytable.FourLowWithKicker:  2,
			paytable.FourAces:           2,
			paytable.FourAcesWithKicker: 2,
			paytable.StraightFlush:      2,
			paytable.RoyalFlush:         2,
		},
	}
}

// Variant returns a preset config by name, or nil.
func Variant(name string) *Config {
	switch name {
	case "hot-roll", "hot_roll":
		return HotRoll()
	case "super-hot-roll", "super_hot_roll":
		return SuperHotRoll()
	case "ultimate-x", "ultimate_x":
		return UltimateX()
	default:
		return nil
	}
}

// VariantNames lists the preset variant identifiers.
func VariantNames() []string {
	return []string{"hot-roll", "super-hot-roll", "ultimate-x"}
}
