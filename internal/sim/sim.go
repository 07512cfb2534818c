// Package sim plays video-poker rounds against a paytable, policy, and
// optional bonus mechanic, and aggregates the outcomes. All randomness flows
// from named seed streams, so any run — and any single round of it — can be
// replayed exactly from its seed.
package sim

import (
	"context"
	"fmt"

	"github.com/vpresearch/vipor/internal/bonus"
	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/eval"
	"github.com/vpresearch/vipor/internal/paytable"
	"github.com/vpresearch/vipor/internal/rng"
	"github.com/vpresearch/vipor/internal/strategy"
)

// Config describes one simulation run.
type Config struct {
	PayTable *paytable.PayTable
	Policy   strategy.Policy
	// Bonus is the optional multiplier mechanic; nil plays the base game.
	Bonus *bonus.Config
	// Seed names the run's random streams. Round r draws from the stream
	// (Seed, r+1), so a round replays without replaying its predecessors.
	Seed   string
	Rounds int
	// Bet is the wager per round in bet units; defaults to 1.
	Bet int
	// Bankroll is the starting bankroll in bet units. Zero disables
	// bankroll tracking and with it ruin detection.
	Bankroll float64
}

func (c *Config) validate() error {
	if c.PayTable == nil {
		return fmt.Errorf("sim: config needs a paytable")
	}
	if c.Policy == nil {
		return fmt.Errorf("sim: config needs a policy")
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("sim: rounds %d must be positive", c.Rounds)
	}
	if c.Bet < 0 {
		return fmt.Errorf("sim: bet %d must not be negative", c.Bet)
	}
	if c.Bankroll < 0 {
		return fmt.Errorf("sim: bankroll %v must not be negative", c.Bankroll)
	}
	return nil
}

// Result aggregates one run.
type Result struct {
	Seed   string
	Rounds int

	TotalBet float64
	TotalWon float64

	// Net holds per-round net outcome moments (win minus wager, in bet
	// units).
	Net Stats

	Categories map[paytable.Category]int64

	// Ruined is set when bankroll tracking is on and the bankroll fell to
	// zero or below; RuinRound is the 1-based round it happened.
	Ruined        bool
	RuinRound     int
	FinalBankroll float64

	// Trajectory holds the bankroll after each completed round, ending at
	// the ruin round for a ruined run. Nil when bankroll tracking is off,
	// so the base simulation loop stays allocation-free.
	Trajectory []float64

	// Interrupted is set when the run stopped early at a round boundary
	// because its context was canceled.
	Interrupted bool
}

// Return is the realized payout per wagered unit.
func (r *Result) Return() float64 {
	if r.TotalBet == 0 {
		return 0
	}
	return r.TotalWon / r.TotalBet
}

// Run plays cfg.Rounds rounds. Cancellation is honored between rounds, never
// inside one: an interrupted run still has internally consistent totals.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	bet := cfg.Bet
	if bet == 0 {
		bet = 1
	}

	evaluator, err := eval.New(cfg.PayTable.Ruleset)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	machine, err := bonus.NewMachine(cfg.Bonus, cfg.PayTable.Ruleset)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	res := &Result{
		Seed:       cfg.Seed,
		Categories: make(map[paytable.Category]int64),
	}
	state := bonus.Initial()
	bank := cfg.Bankroll
	trackBank := cfg.Bankroll > 0
	if trackBank {
		res.Trajectory = make([]float64, 0, cfg.Rounds)
	}

	for round := 0; round < cfg.Rounds; round++ {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}

		// Stream r+1 for round r; stream 0 stays reserved for run-level
		// draws like bootstrap resampling.
		stream := rng.NewStream(cfg.Seed, uint64(round)+1)
		deck := cards.NewDeck(stream)

		hand, err := deck.Draw(5)
		if err != nil {
			return nil, err
		}
		trig := bonus.DrawTrigger(machine.Config(), stream)

		mask, err := cfg.Policy.Hold(hand)
		if err != nil {
			return nil, fmt.Errorf("sim: round %d: %w", round+1, err)
		}
		if mask < 0 || mask > strategy.MaskAll {
			return nil, fmt.Errorf("sim: round %d: policy %s returned mask %d outside 0..31",
				round+1, cfg.Policy.Name(), mask)
		}

		for i := 0; i < 5; i++ {
			if mask&(1<<i) != 0 {
				continue
			}
			drawn, err := deck.Draw(1)
			if err != nil {
				return nil, err
			}
			hand[i] = drawn[0]
		}

		outcome := evaluator.Classify(hand)
		var mult int
		state, mult = machine.Advance(state, outcome, trig)
		win := float64(cfg.PayTable.Payout(outcome) * mult * bet)
		wager := float64(bet)

		res.Rounds++
		res.TotalBet += wager
		res.TotalWon += win
		res.Net.Add(win - wager)
		res.Categories[outcome]++

		if trackBank {
			bank += win - wager
			res.Trajectory = append(res.Trajectory, bank)
			if bank <= 0 {
				res.Ruined = true
				res.RuinRound = round + 1
				break
			}
		}
	}

	res.FinalBankroll = bank
	return res, nil
}
