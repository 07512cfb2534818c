// Package bonus models machine-specific multiplier mechanics as a
// data-driven state machine. Each variant (Hot Roll, Super Hot Roll,
// Ultimate X) shares one shape — state, trigger event, outcome category in;
// new state and applied multiplier out — and differs only in configuration,
// so new mechanics are new transition tables, not new code paths.
package bonus

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vpresearch/vipor/internal/paytable"
)

// ErrInvalidBonusConfig reports malformed tier or trigger parameters.
// Surfaced at load time, before any simulation starts.
var ErrInvalidBonusConfig = errors.New("bonus: invalid bonus config")

// Config is the transition table for one bonus variant. The exact trigger
// probabilities and tier schedules of production machines are proprietary;
// the presets in this package carry research approximations and every field
// is overridable from YAML.
type Config struct {
	// Variant is a free-form identifier used in reports and stored results.
	Variant string `yaml:"variant"`

	// TierMultipliers holds the payout multiplier per escalation tier,
	// tier 0 first. A single-entry table means the variant has no tier
	// ladder. Every entry must be >= 1.
	TierMultipliers []int `yaml:"tier_multipliers"`

	// AdvanceOn lists outcome categories that advance the tier by one,
	// capped at the top tier.
	AdvanceOn []paytable.Category `yaml:"-"`

	// AdvanceOnKeys is the YAML form of AdvanceOn.
	AdvanceOnKeys []string `yaml:"advance_on"`

	// ResetOnLoss resets the tier to 0 on any non-paying hand.
	ResetOnLoss bool `yaml:"reset_on_loss"`

	// TriggerChance is the per-round probability of a trigger event
	// (for dice variants, a roll being granted). Zero disables triggers.
	TriggerChance float64 `yaml:"trigger_chance"`

	// DiceMultiplier applies a 2d6 multiplier to a round consuming a roll.
	DiceMultiplier bool `yaml:"dice_multiplier"`

	// RollsPerTrigger is how many rolls a trigger banks. Hot Roll grants
	// one (consumed the same round); Super Hot Roll banks several.
	RollsPerTrigger int `yaml:"rolls_per_trigger"`

	// NextHand promises a multiplier for the NEXT round when this round's
	// outcome category matches; the Ultimate X mechanic.
	NextHand map[paytable.Category]int `yaml:"-"`

	// NextHandKeys is the YAML form of NextHand.
	NextHandKeys map[string]int `yaml:"next_hand"`
}

// Validate checks the transition table. The ruleset is needed to resolve
// category references.
func (c *Config) Validate(rs paytable.Ruleset) error {
	if c.Variant == "" {
		return fmt.Errorf("%w: variant name is required", ErrInvalidBonusConfig)
	}
	if len(c.TierMultipliers) == 0 {
		return fmt.Errorf("%w: at least one tier multiplier is required", ErrInvalidBonusConfig)
	}
	for i, m := range c.TierMultipliers {
		if m < 1 {
			return fmt.Errorf("%w: tier %d multiplier %d must be >= 1", ErrInvalidBonusConfig, i, m)
		}
	}
	if c.TriggerChance < 0 || c.TriggerChance > 1 {
		return fmt.Errorf("%w: trigger chance %v outside [0, 1]", ErrInvalidBonusConfig, c.TriggerChance)
	}
	if c.RollsPerTrigger < 0 {
		return fmt.Errorf("%w: rolls per trigger %d must not be negative", ErrInvalidBonusConfig, c.RollsPerTrigger)
	}
	if c.TriggerChance > 0 && c.DiceMultiplier && c.RollsPerTrigger == 0 {
		return fmt.Errorf("%w: dice variant needs rolls_per_trigger >= 1", ErrInvalidBonusConfig)
	}

	valid := map[paytable.Category]bool{}
	cats, err := paytable.Categories(rs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBonusConfig, err)
	}
	for _, cat := range cats {
		valid[cat] = true
	}
	for _, cat := range c.AdvanceOn {
		if !valid[cat] {
			return fmt.Errorf("%w: advance category %q not in ruleset %q", ErrInvalidBonusConfig, cat.Key(), rs)
		}
		if cat == paytable.Nothing {
			return fmt.Errorf("%w: a losing hand cannot advance the tier", ErrInvalidBonusConfig)
		}
	}
	for cat, mult := range c.NextHand {
		if !valid[cat] {
			return fmt.Errorf("%w: next-hand category %q not in ruleset %q", ErrInvalidBonusConfig, cat.Key(), rs)
		}
		if mult < 1 {
			return fmt.Errorf("%w: next-hand multiplier %d for %q must be >= 1", ErrInvalidBonusConfig, mult, cat.Key())
		}
	}
	return nil
}

func (c *Config) resolveKeys() error {
	for _, key := range c.AdvanceOnKeys {
		cat, err := paytable.CategoryFromKey(key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBonusConfig, err)
		}
		c.AdvanceOn = append(c.AdvanceOn, cat)
	}
	if len(c.NextHandKeys) > 0 {
		c.NextHand = make(map[paytable.Category]int, len(c.NextHandKeys))
		for key, mult := range c.NextHandKeys {
			cat, err := paytable.CategoryFromKey(key)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidBonusConfig, err)
			}
			c.NextHand[cat] = mult
		}
	}
	return nil
}

// ParseConfig loads a variant config from YAML and validates it against the
// ruleset.
func ParseConfig(data []byte, rs paytable.Ruleset) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBonusConfig, err)
	}
	if err := cfg.resolveKeys(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(rs); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses a variant YAML file.
func LoadConfig(path string, rs paytable.Ruleset) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bonus: read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, rs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
