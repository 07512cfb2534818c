package bonus

import (
	"errors"
	"testing"

	"github.com/vpresearch/vipor/internal/paytable"
	"github.com/vpresearch/vipor/internal/rng"
)

func TestNilMachineIsIdentity(t *testing.T) {
	m, err := NewMachine(nil, paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatal("nil config should yield nil machine")
	}

	st, mult := m.Advance(Initial(), paytable.RoyalFlush, NoTrigger)
	if mult != 1 {
		t.Errorf("nil machine multiplier = %d, want 1", mult)
	}
	if st != Initial() {
		t.Errorf("nil machine changed state: %+v", st)
	}
	if m.BaseMultiplier(Initial()) != 1 {
		t.Error("nil machine base multiplier != 1")
	}
}

func TestZeroEscalationNeverLeavesTierZero(t *testing.T) {
	cfg := &Config{
		Variant:         "degenerate",
		TierMultipliers: []int{1, 2, 4},
		AdvanceOn:       nil, // nothing qualifies
		TriggerChance:   0,
	}
	m, err := NewMachine(cfg, paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}

	st := Initial()
	outcomes := []paytable.Category{
		paytable.RoyalFlush, paytable.Nothing, paytable.FourAces,
		paytable.JacksOrBetterPair, paytable.Nothing, paytable.StraightFlush,
	}
	for _, outcome := range outcomes {
		var mult int
		st, mult = m.Advance(st, outcome, NoTrigger)
		if st.Tier != 0 {
			t.Fatalf("tier escalated to %d on %s with zero escalation config", st.Tier, outcome)
		}
		if mult != 1 {
			t.Fatalf("multiplier %d on %s, want 1", mult, outcome)
		}
	}
}

func TestTierLadderAdvanceAndReset(t *testing.T) {
	cfg := &Config{
		Variant:         "ladder",
		TierMultipliers: []int{1, 2, 3},
		AdvanceOn:       []paytable.Category{paytable.TwoPair},
		ResetOnLoss:     true,
	}
	m, err := NewMachine(cfg, paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}

	st := Initial()

	st, mult := m.Advance(st, paytable.TwoPair, NoTrigger)
	if st.Tier != 1 || mult != 1 {
		t.Fatalf("after first advance: tier %d mult %d, want 1/1", st.Tier, mult)
	}

	// The new tier's multiplier applies to the NEXT round.
	st, mult = m.Advance(st, paytable.TwoPair, NoTrigger)
	if st.Tier != 2 || mult != 2 {
		t.Fatalf("after second advance: tier %d mult %d, want 2/2", st.Tier, mult)
	}

	// Capped at top tier.
	st, mult = m.Advance(st, paytable.TwoPair, NoTrigger)
	if st.Tier != 2 || mult != 3 {
		t.Fatalf("at cap: tier %d mult %d, want 2/3", st.Tier, mult)
	}

	// A paying non-advancing hand holds the tier.
	st, _ = m.Advance(st, paytable.JacksOrBetterPair, NoTrigger)
	if st.Tier != 2 {
		t.Fatalf("paying hand moved tier to %d", st.Tier)
	}

	// A losing hand resets.
	st, _ = m.Advance(st, paytable.Nothing, NoTrigger)
	if st.Tier != 0 {
		t.Fatalf("loss did not reset tier, got %d", st.Tier)
	}
}

func TestHotRollDiceAppliesThisRoundOnly(t *testing.T) {
	m, err := NewMachine(HotRoll(), paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}

	st := Initial()
	trig := TriggerEvent{Fired: true, Dice: [2]int{3, 4}}
	st, mult := m.Advance(st, paytable.JacksOrBetterPair, trig)
	if mult != 7 {
		t.Errorf("triggered round multiplier = %d, want 7", mult)
	}
	if st.RollsLeft != 0 {
		t.Errorf("rolls left = %d after single-roll trigger", st.RollsLeft)
	}

	st, mult = m.Advance(st, paytable.JacksOrBetterPair, NoTrigger)
	if mult != 1 {
		t.Errorf("following round multiplier = %d, want 1", mult)
	}
}

func TestSuperHotRollBanksRolls(t *testing.T) {
	m, err := NewMachine(SuperHotRoll(), paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}

	st := Initial()
	st, mult := m.Advance(st, paytable.Nothing, TriggerEvent{Fired: true, Dice: [2]int{6, 6}})
	if mult != 12 {
		t.Errorf("first roll multiplier = %d, want 12", mult)
	}
	if st.RollsLeft != 2 {
		t.Fatalf("rolls left = %d, want 2", st.RollsLeft)
	}

	// Banked rolls keep applying with fresh dice even without a trigger.
	st, mult = m.Advance(st, paytable.Nothing, TriggerEvent{Dice: [2]int{1, 2}})
	if mult != 3 {
		t.Errorf("banked roll multiplier = %d, want 3", mult)
	}
	if st.RollsLeft != 1 {
		t.Fatalf("rolls left = %d, want 1", st.RollsLeft)
	}
}

func TestUltimateXPendingMultiplier(t *testing.T) {
	m, err := NewMachine(UltimateX(), paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatal(err)
	}

	st := Initial()
	st, mult := m.Advance(st, paytable.FullHouse, NoTrigger)
	if mult != 1 {
		t.Errorf("earning round multiplier = %d, want 1", mult)
	}
	if st.Pending != 12 {
		t.Fatalf("pending = %d after full house, want 12", st.Pending)
	}

	// The promised multiplier applies to the next round, then clears unless
	// re-earned.
	st, mult = m.Advance(st, paytable.Nothing, NoTrigger)
	if mult != 12 {
		t.Errorf("promised round multiplier = %d, want 12", mult)
	}
	if st.Pending != 0 {
		t.Errorf("pending = %d after losing hand, want 0", st.Pending)
	}

	st, mult = m.Advance(st, paytable.TwoPair, NoTrigger)
	if mult != 1 || st.Pending != 3 {
		t.Errorf("re-earn: mult %d pending %d, want 1/3", mult, st.Pending)
	}
}

func TestDrawTriggerDeterministic(t *testing.T) {
	cfg := HotRoll()
	a := DrawTrigger(cfg, rng.NewStream("trig", 1))
	b := DrawTrigger(cfg, rng.NewStream("trig", 1))
	if a != b {
		t.Errorf("trigger draw not reproducible: %+v vs %+v", a, b)
	}

	if got := DrawTrigger(nil, nil); got != NoTrigger {
		t.Errorf("nil config trigger = %+v", got)
	}
}

func TestDrawTriggerZeroChanceNeverFires(t *testing.T) {
	cfg := HotRoll()
	cfg.TriggerChance = 0
	stream := rng.NewStream("never", 0)
	for i := 0; i < 1000; i++ {
		if trig := DrawTrigger(cfg, stream); trig.Fired {
			t.Fatal("zero-chance trigger fired")
		}
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no_variant", Config{TierMultipliers: []int{1}}},
		{"no_tiers", Config{Variant: "x"}},
		{"zero_multiplier", Config{Variant: "x", TierMultipliers: []int{0}}},
		{"chance_above_one", Config{Variant: "x", TierMultipliers: []int{1}, TriggerChance: 1.5}},
		{"negative_chance", Config{Variant: "x", TierMultipliers: []int{1}, TriggerChance: -0.1}},
		{"negative_rolls", Config{Variant: "x", TierMultipliers: []int{1}, RollsPerTrigger: -1}},
		{"dice_without_rolls", Config{Variant: "x", TierMultipliers: []int{1}, TriggerChance: 0.5, DiceMultiplier: true}},
		{"advance_on_loss", Config{Variant: "x", TierMultipliers: []int{1}, AdvanceOn: []paytable.Category{paytable.Nothing}}},
		{"bad_next_hand", Config{Variant: "x", TierMultipliers: []int{1}, NextHand: map[paytable.Category]int{paytable.TwoPair: 0}}},
		{"foreign_category", Config{Variant: "x", TierMultipliers: []int{1}, AdvanceOn: []paytable.Category{paytable.FourDeuces}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(paytable.RulesetJacksOrBetter)
			if !errors.Is(err, ErrInvalidBonusConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidBonusConfig", err)
			}
		})
	}
}

func TestParseConfigYAML(t *testing.T) {
	data := []byte(`
variant: custom_ladder
tier_multipliers: [1, 2, 4, 8]
advance_on: [two_pair, three_of_a_kind]
reset_on_loss: true
`)
	cfg, err := ParseConfig(data, paytable.RulesetJacksOrBetter)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Variant != "custom_ladder" || len(cfg.TierMultipliers) != 4 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.AdvanceOn) != 2 || cfg.AdvanceOn[0] != paytable.TwoPair {
		t.Errorf("advance categories not resolved: %v", cfg.AdvanceOn)
	}

	if _, err := ParseConfig([]byte("variant: x\ntier_multipliers: [1]\nadvance_on: [bogus]"), paytable.RulesetJacksOrBetter); !errors.Is(err, ErrInvalidBonusConfig) {
		t.Errorf("bogus category error = %v", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range VariantNames() {
		cfg := Variant(name)
		if cfg == nil {
			t.Fatalf("preset %q missing", name)
		}
		if err := cfg.Validate(paytable.RulesetJacksOrBetter); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if Variant("no-such-variant") != nil {
		t.Error("unknown variant returned a config")
	}
}

func TestExpectedDiceMultiplier(t *testing.T) {
	if got := ExpectedDiceMultiplier(0); got != 1.0 {
		t.Errorf("ExpectedDiceMultiplier(0) = %f", got)
	}
	if got := ExpectedDiceMultiplier(1.0 / 6.0); got != 2.0 {
		t.Errorf("ExpectedDiceMultiplier(1/6) = %f, want 2", got)
	}
}
