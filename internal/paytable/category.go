package paytable

import "fmt"

// Category is the payout classification of a final 5-card hand. Every hand
// maps to exactly one category under a ruleset; the paytable then assigns a
// multiplier. The enum covers both supported rulesets; each ruleset emits
// only its own subset (see Categories).
type Category int

const (
	Nothing Category = iota
	JacksOrBetterPair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	// Bonus-poker quad splits: 5-K quads, 2-4 quads, aces, plus the
	// kicker-qualified variants richer tables pay separately.
	FourOfAKind
	FourLow
	FourLowWithKicker
	FourAces
	FourAcesWithKicker
	StraightFlush
	RoyalFlush
	// Deuces-wild-bonus categories.
	FiveSixesToKings
	FiveThreesToFives
	FiveAces
	WildRoyalFlush
	FourDeuces
	FourDeucesWithAce
)

// categoryKeys are the stable identifiers used in paytable YAML files and
// persisted results. They match the original research tool's table files.
var categoryKeys = map[Category]string{
	Nothing:            "nothing",
	JacksOrBetterPair:  "jacks_or_better",
	TwoPair:            "two_pair",
	ThreeOfAKind:       "three_of_a_kind",
	Straight:           "straight",
	Flush:              "flush",
	FullHouse:          "full_house",
	FourOfAKind:        "four_of_a_kind",
	FourLow:            "four_234",
	FourLowWithKicker:  "four_low_ace",
	FourAces:           "four_aces",
	FourAcesWithKicker: "four_aces_234",
	StraightFlush:      "straight_flush",
	RoyalFlush:         "royal_flush",
	FiveSixesToKings:   "five_6_to_k",
	FiveThreesToFives:  "five_345",
	FiveAces:           "five_aces",
	WildRoyalFlush:     "wild_royal_flush",
	FourDeuces:         "four_deuces",
	FourDeucesWithAce:  "four_deuces_with_ace",
}

// keyAliases maps alternate YAML spellings onto canonical categories.
var keyAliases = map[string]Category{
	"natural_royal_flush": RoyalFlush,
	"high_pair":           JacksOrBetterPair,
}

var labels = map[Category]string{
	Nothing:            "Nothing",
	JacksOrBetterPair:  "Jacks or Better",
	TwoPair:            "Two Pair",
	ThreeOfAKind:       "Three of a Kind",
	Straight:           "Straight",
	Flush:              "Flush",
	FullHouse:          "Full House",
	FourOfAKind:        "Four of a Kind (5-K)",
	FourLow:            "Four 2-4",
	FourLowWithKicker:  "Four 2-4 w/ A-4 kicker",
	FourAces:           "Four Aces",
	FourAcesWithKicker: "Four Aces w/ 2-4 kicker",
	StraightFlush:      "Straight Flush",
	RoyalFlush:         "Royal Flush",
	FiveSixesToKings:   "Five 6s-Ks",
	FiveThreesToFives:  "Five 3s-5s",
	FiveAces:           "Five Aces",
	WildRoyalFlush:     "Wild Royal Flush",
	FourDeuces:         "Four Deuces",
	FourDeucesWithAce:  "Four Deuces w/ Ace",
}

var keyToCategory = map[string]Category{}

func init() {
	for cat, key := range categoryKeys {
		keyToCategory[key] = cat
	}
	for key, cat := range keyAliases {
		keyToCategory[key] = cat
	}
}

// Key returns the stable identifier used in YAML tables and stored results.
func (c Category) Key() string {
	return categoryKeys[c]
}

// Label returns a human-readable name for reports.
func (c Category) Label() string {
	return labels[c]
}

func (c Category) String() string {
	return c.Key()
}

// CategoryFromKey resolves a YAML key to a category.
func CategoryFromKey(key string) (Category, error) {
	cat, ok := keyToCategory[key]
	if !ok {
		return 0, fmt.Errorf("unknown hand category %q", key)
	}
	return cat, nil
}

// Ruleset identifies the hand-classification rules a variant plays under.
type Ruleset string

const (
	RulesetJacksOrBetter   Ruleset = "jacks_or_better"
	RulesetDeucesWildBonus Ruleset = "deuces_wild_bonus"
)

// jacksOrBetterCategories is ordered from weakest to strongest; report code
// relies on the ordering for display.
var jacksOrBetterCategories = []Category{
	Nothing,
	JacksOrBetterPair,
	TwoPair,
	ThreeOfAKind,
	Straight,
	Flush,
	FullHouse,
	FourOfAKind,
	FourLow,
	FourLowWithKicker,
	FourAces,
	FourAcesWithKicker,
	StraightFlush,
	RoyalFlush,
}

var deucesWildBonusCategories = []Category{
	Nothing,
	ThreeOfAKind,
	Straight,
	Flush,
	FullHouse,
	FourOfAKind,
	StraightFlush,
	FiveSixesToKings,
	FiveThreesToFives,
	FiveAces,
	WildRoyalFlush,
	FourDeuces,
	FourDeucesWithAce,
	RoyalFlush,
}

// Categories returns every category a ruleset's evaluator can emit. A
// paytable for the ruleset must cover all of them.
func Categories(rs Ruleset) ([]Category, error) {
	switch rs {
	case RulesetJacksOrBetter:
		return jacksOrBetterCategories, nil
	case RulesetDeucesWildBonus:
		return deucesWildBonusCategories, nil
	default:
		return nil, fmt.Errorf("unknown ruleset %q", rs)
	}
}
