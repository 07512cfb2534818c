package paytable

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPayTable reports a paytable that cannot drive a simulation:
// missing or unknown categories, negative payouts, or an unknown ruleset.
// Surfaced at load time, before any simulation starts.
var ErrInvalidPayTable = errors.New("paytable: invalid paytable")

// PayTable maps hand categories to payout multiples of the bet unit.
// Immutable per game variant: loaded or constructed once, then only read.
type PayTable struct {
	Name    string
	Ruleset Ruleset
	BetUnit int
	payouts map[Category]int
}

// New builds a validated paytable. The payout map must cover every category
// the ruleset's evaluator can emit.
func New(name string, rs Ruleset, betUnit int, payouts map[Category]int) (*PayTable, error) {
	pt := &PayTable{
		Name:    name,
		Ruleset: rs,
		BetUnit: betUnit,
		payouts: make(map[Category]int, len(payouts)),
	}
	for cat, pay := range payouts {
		pt.payouts[cat] = pay
	}
	if err := pt.validate(); err != nil {
		return nil, err
	}
	return pt, nil
}

func (pt *PayTable) validate() error {
	if pt.BetUnit <= 0 {
		return fmt.Errorf("%w: bet unit %d must be positive", ErrInvalidPayTable, pt.BetUnit)
	}
	required, err := Categories(pt.Ruleset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayTable, err)
	}
	requiredSet := make(map[Category]bool, len(required))
	for _, cat := range required {
		requiredSet[cat] = true
		if _, ok := pt.payouts[cat]; !ok {
			return fmt.Errorf("%w: missing category %q for ruleset %q", ErrInvalidPayTable, cat.Key(), pt.Ruleset)
		}
	}
	for cat, pay := range pt.payouts {
		if !requiredSet[cat] {
			return fmt.Errorf("%w: category %q is not part of ruleset %q", ErrInvalidPayTable, cat.Key(), pt.Ruleset)
		}
		if pay < 0 {
			return fmt.Errorf("%w: negative payout %d for %q", ErrInvalidPayTable, pay, cat.Key())
		}
	}
	if pt.payouts[Nothing] != 0 {
		return fmt.Errorf("%w: %q must pay 0", ErrInvalidPayTable, Nothing.Key())
	}
	return nil
}

// Payout returns the payout multiple for a category.
func (pt *PayTable) Payout(cat Category) int {
	return pt.payouts[cat]
}

// Entries returns (category, payout) pairs in the ruleset's display order.
func (pt *PayTable) Entries() []Entry {
	order, _ := Categories(pt.Ruleset)
	entries := make([]Entry, 0, len(order))
	for _, cat := range order {
		entries = append(entries, Entry{Category: cat, Payout: pt.payouts[cat]})
	}
	return entries
}

// Entry is one paytable row.
type Entry struct {
	Category Category
	Payout   int
}

type payTableYAML struct {
	Name    string         `yaml:"name"`
	Ruleset string         `yaml:"ruleset"`
	BetUnit int            `yaml:"bet_unit"`
	Payouts map[string]int `yaml:"payouts"`
}

// Parse loads a paytable from YAML. The format mirrors the research tool's
// table files:
//
//	name: 9/6 Jacks or Better
//	ruleset: jacks_or_better
//	bet_unit: 1
//	payouts:
//	  royal_flush: 800
//	  ...
//
// A missing "nothing" entry defaults to 0; everything else must be present.
func Parse(data []byte) (*PayTable, error) {
	var raw payTableYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayTable, err)
	}
	if raw.Name == "" {
		raw.Name = "Unnamed PayTable"
	}
	if raw.BetUnit == 0 {
		raw.BetUnit = 1
	}
	if raw.Ruleset == "" {
		raw.Ruleset = string(RulesetJacksOrBetter)
	}

	payouts := make(map[Category]int, len(raw.Payouts))
	for key, pay := range raw.Payouts {
		cat, err := CategoryFromKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayTable, err)
		}
		if _, dup := payouts[cat]; dup {
			return nil, fmt.Errorf("%w: duplicate entry for category %q", ErrInvalidPayTable, cat.Key())
		}
		payouts[cat] = pay
	}
	if _, ok := payouts[Nothing]; !ok {
		payouts[Nothing] = 0
	}

	return New(raw.Name, Ruleset(raw.Ruleset), raw.BetUnit, payouts)
}

// Load reads and parses a paytable YAML file.
func Load(path string) (*PayTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("paytable: read %s: %w", path, err)
	}
	pt, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pt, nil
}
