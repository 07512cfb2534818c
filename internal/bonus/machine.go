package bonus

import (
	"github.com/vpresearch/vipor/internal/paytable"
	"github.com/vpresearch/vipor/internal/rng"
)

// State is the runtime position of a bonus mechanic. The zero value is the
// initial state: base tier, no pending multiplier, no banked rolls. States
// are values; transitions return a new one.
type State struct {
	// Tier is the current escalation tier, 0 = base.
	Tier int
	// Pending is the multiplier promised by the previous round's outcome
	// (Ultimate X); 0 means none.
	Pending int
	// RollsLeft counts banked dice rolls not yet consumed.
	RollsLeft int
}

// Initial returns the starting state: tier 0, no pending multiplier.
func Initial() State {
	return State{}
}

// TriggerEvent is one round's externally-drawn randomness for the mechanic.
// Keeping the randomness outside the machine keeps Advance a pure function
// of (state, outcome, trigger), so transitions can be tested and replayed
// without an RNG.
type TriggerEvent struct {
	Fired bool
	Dice  [2]int
}

// NoTrigger is the trigger event for rounds where nothing fired.
var NoTrigger = TriggerEvent{}

// DrawTrigger samples a round's trigger event from a stream. The dice are
// drawn every round — they also serve rolls banked by an earlier trigger —
// so the stream stays aligned across variants.
func DrawTrigger(cfg *Config, stream *rng.Stream) TriggerEvent {
	if cfg == nil {
		return NoTrigger
	}
	fired := stream.Float64() < cfg.TriggerChance
	d1, d2 := stream.Die(), stream.Die()
	return TriggerEvent{Fired: fired, Dice: [2]int{d1, d2}}
}

// Machine applies one variant's transition table. A nil machine is valid
// and means "no bonus mechanic": multiplier 1, state never changes.
type Machine struct {
	cfg *Config
}

// NewMachine validates the config against the ruleset and builds a machine.
// A nil config yields a nil machine.
func NewMachine(cfg *Config, rs paytable.Ruleset) (*Machine, error) {
	if cfg == nil {
		return nil, nil
	}
	if err := cfg.Validate(rs); err != nil {
		return nil, err
	}
	return &Machine{cfg: cfg}, nil
}

// Config returns the variant configuration, nil for the no-bonus machine.
func (m *Machine) Config() *Config {
	if m == nil {
		return nil
	}
	return m.cfg
}

// BaseMultiplier is the part of the round multiplier known before the
// round's trigger is drawn: the tier multiplier times any pending next-hand
// multiplier. The optimizer uses it to scale expected values; it is uniform
// across outcome categories, so it never changes which hold is best.
func (m *Machine) BaseMultiplier(st State) int {
	if m == nil {
		return 1
	}
	mult := 1
	if st.Tier >= 0 && st.Tier < len(m.cfg.TierMultipliers) {
		mult = m.cfg.TierMultipliers[st.Tier]
	}
	if st.Pending > 0 {
		mult *= st.Pending
	}
	return mult
}

// Advance consumes a completed round: the outcome category and the round's
// trigger event. It returns the next state and the multiplier applied to
// THIS round's payout. Pure: same inputs, same outputs.
func (m *Machine) Advance(st State, outcome paytable.Category, trig TriggerEvent) (State, int) {
	if m == nil {
		return st, 1
	}

	applied := m.BaseMultiplier(st)

	// Dice rolls: a fresh trigger banks rolls; any available roll is
	// consumed by this round and multiplies this round's payout. The event
	// must carry dice whenever a roll can be consumed (DrawTrigger always
	// populates them).
	next := st
	if m.cfg.DiceMultiplier {
		if trig.Fired {
			next.RollsLeft += m.cfg.RollsPerTrigger
		}
		if next.RollsLeft > 0 && trig.Dice[0] > 0 {
			applied *= trig.Dice[0] + trig.Dice[1]
			next.RollsLeft--
		}
	}

	// Pending multiplier was spent on this round.
	next.Pending = 0
	if mult, ok := m.cfg.NextHand[outcome]; ok {
		next.Pending = mult
	}

	// Tier ladder.
	if advances(m.cfg.AdvanceOn, outcome) {
		if next.Tier < len(m.cfg.TierMultipliers)-1 {
			next.Tier++
		}
	} else if m.cfg.ResetOnLoss && outcome == paytable.Nothing {
		next.Tier = 0
	}

	return next, applied
}

func advances(categories []paytable.Category, outcome paytable.Category) bool {
	for _, cat := range categories {
		if cat == outcome {
			return true
		}
	}
	return false
}

// ExpectedDiceMultiplier is the long-run multiplier a dice mechanic applies
// per round: 1 with probability (1-p), E[2d6] = 7 with probability p. Used
// for expected-value scaling in reports.
func ExpectedDiceMultiplier(p float64) float64 {
	return 1.0 + 6.0*p
}
