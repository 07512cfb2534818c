// Command vipor is a research workbench for video-poker variants: it solves
// exact best-hold decisions, simulates sessions with bonus mechanics, and
// estimates bankroll risk of ruin.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vpresearch/vipor/internal/bonus"
	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
	"github.com/vpresearch/vipor/internal/risk"
	"github.com/vpresearch/vipor/internal/scripting"
	"github.com/vpresearch/vipor/internal/sim"
	"github.com/vpresearch/vipor/internal/strategy"
)

type options struct {
	mode         string
	payTable     string
	payTableFile string
	bonusName    string
	bonusFile    string
	policy       string
	scriptFile   string
	hand         string
	hold         string
	seed         string
	runs         int
	rounds       int
	bet          int
	bankroll     float64
	workers      int
	resamples    int
	confidence   float64
	top          int
	dbPath       string
	verbose      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "simulate", "simulate | best-hold | frozen | risk | solve | paytables")
	flag.StringVar(&opts.payTable, "paytable", "9-6-job", "builtin paytable name")
	flag.StringVar(&opts.payTableFile, "paytable-file", "", "paytable YAML file (overrides -paytable)")
	flag.StringVar(&opts.bonusName, "bonus", "", "bonus variant preset: "+strings.Join(bonus.VariantNames(), " | "))
	flag.StringVar(&opts.bonusFile, "bonus-file", "", "bonus variant YAML file (overrides -bonus)")
	flag.StringVar(&opts.policy, "policy", "optimal", "hold policy: "+strings.Join(strategy.PolicyNames(), " | "))
	flag.StringVar(&opts.scriptFile, "script", "", "JavaScript policy file (overrides -policy)")
	flag.StringVar(&opts.hand, "hand", "", `dealt hand for best-hold/frozen, e.g. "As Ks Qs Js Ts"`)
	flag.StringVar(&opts.hold, "hold", "", `held positions for frozen mode, e.g. "0,1" (empty = hold all)`)
	flag.StringVar(&opts.seed, "seed", "", "simulation seed (defaults to the current time)")
	flag.IntVar(&opts.runs, "runs", 100, "independent runs per batch")
	flag.IntVar(&opts.rounds, "rounds", 10000, "rounds per run")
	flag.IntVar(&opts.bet, "bet", 1, "wager per round in bet units")
	flag.Float64Var(&opts.bankroll, "bankroll", 0, "starting bankroll in bet units (0 = untracked)")
	flag.IntVar(&opts.workers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	flag.IntVar(&opts.resamples, "resamples", risk.DefaultResamples, "bootstrap resamples for risk mode")
	flag.Float64Var(&opts.confidence, "confidence", 0.95, "bootstrap interval confidence")
	flag.IntVar(&opts.top, "top", 5, "alternative holds to show in best-hold mode")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite file to persist results into")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	logger := newLogger(opts.verbose)

	if opts.seed == "" {
		opts.seed = fmt.Sprintf("vipor-%d", time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, opts); err != nil {
		logger.Fatal().Err(err).Msg("vipor failed")
	}
}

func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()
	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.InfoLevel)
}

func run(ctx context.Context, logger zerolog.Logger, opts options) error {
	switch opts.mode {
	case "paytables":
		return runPayTables()
	case "best-hold":
		return runBestHold(opts)
	case "frozen":
		return runFrozen(opts)
	case "simulate":
		return runSimulate(ctx, logger, opts)
	case "risk":
		return runRisk(ctx, logger, opts)
	case "solve":
		return runSolve(ctx, logger, opts)
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func loadPayTable(opts options) (*paytable.PayTable, error) {
	if opts.payTableFile != "" {
		return paytable.Load(opts.payTableFile)
	}
	pt := paytable.Builtin(opts.payTable)
	if pt == nil {
		return nil, fmt.Errorf("unknown paytable %q (builtins: %s)",
			opts.payTable, strings.Join(paytable.BuiltinNames(), ", "))
	}
	return pt, nil
}

func loadBonus(opts options, rs paytable.Ruleset) (*bonus.Config, error) {
	if opts.bonusFile != "" {
		return bonus.LoadConfig(opts.bonusFile, rs)
	}
	if opts.bonusName == "" {
		return nil, nil
	}
	cfg := bonus.Variant(opts.bonusName)
	if cfg == nil {
		return nil, fmt.Errorf("unknown bonus variant %q (have: %s)",
			opts.bonusName, strings.Join(bonus.VariantNames(), ", "))
	}
	if err := cfg.Validate(rs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadPolicy(opts options, pt *paytable.PayTable) (strategy.Policy, error) {
	if opts.scriptFile != "" {
		source, err := os.ReadFile(opts.scriptFile)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		return scripting.NewPolicy(opts.scriptFile, string(source))
	}

	var opt *strategy.Optimizer
	if opts.policy == "optimal" {
		var err error
		opt, err = strategy.NewOptimizer(pt)
		if err != nil {
			return nil, err
		}
	}
	return strategy.NewPolicy(opts.policy, opt)
}

func parseHold(s string) (int, error) {
	if s == "" {
		return strategy.MaskAll, nil
	}
	mask := 0
	for _, tok := range strings.Split(s, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return 0, fmt.Errorf("invalid hold position %q", tok)
		}
		if idx < 0 || idx > 4 {
			return 0, fmt.Errorf("hold position %d outside 0..4", idx)
		}
		mask |= 1 << idx
	}
	return mask, nil
}

func runBestHold(opts options) error {
	if opts.hand == "" {
		return fmt.Errorf("best-hold mode needs -hand")
	}
	pt, err := loadPayTable(opts)
	if err != nil {
		return err
	}
	hand, err := cards.ParseHand(opts.hand)
	if err != nil {
		return err
	}
	opt, err := strategy.NewOptimizer(pt)
	if err != nil {
		return err
	}
	holds, err := opt.Holds(hand)
	if err != nil {
		return err
	}
	return renderHolds(pt, hand, holds, opts.top)
}

func runFrozen(opts options) error {
	if opts.hand == "" {
		return fmt.Errorf("frozen mode needs -hand")
	}
	pt, err := loadPayTable(opts)
	if err != nil {
		return err
	}
	hand, err := cards.ParseHand(opts.hand)
	if err != nil {
		return err
	}
	mask, err := parseHold(opts.hold)
	if err != nil {
		return err
	}
	opt, err := strategy.NewOptimizer(pt)
	if err != nil {
		return err
	}
	ev, err := opt.HoldEV(hand, mask)
	if err != nil {
		return err
	}
	best, err := opt.BestHold(hand)
	if err != nil {
		return err
	}
	return renderFrozen(pt, hand, mask, ev, best)
}

func runSimulate(ctx context.Context, logger zerolog.Logger, opts options) error {
	pt, err := loadPayTable(opts)
	if err != nil {
		return err
	}
	bonusCfg, err := loadBonus(opts, pt.Ruleset)
	if err != nil {
		return err
	}
	policy, err := loadPolicy(opts, pt)
	if err != nil {
		return err
	}

	logger.Info().
		Str("paytable", pt.Name).
		Str("policy", policy.Name()).
		Str("seed", opts.seed).
		Int("runs", opts.runs).
		Int("rounds", opts.rounds).
		Msg("starting simulation batch")

	start := time.Now()
	batch, err := sim.Batch(ctx, sim.BatchRequest{
		Config: sim.Config{
			PayTable: pt,
			Policy:   policy,
			Bonus:    bonusCfg,
			Seed:     opts.seed,
			Rounds:   opts.rounds,
			Bet:      opts.bet,
			Bankroll: opts.bankroll,
		},
		Runs:    opts.runs,
		Workers: opts.workers,
	})
	if err != nil {
		return err
	}
	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("rounds_played", batch.Aggregate.Rounds).
		Int("excluded", batch.Excluded).
		Msg("batch complete")

	if err := renderBatch(pt, policy, bonusCfg, batch, opts); err != nil {
		return err
	}
	if opts.dbPath != "" {
		return persistBatch(logger, opts, pt, policy, bonusCfg, batch)
	}
	return nil
}

func runRisk(ctx context.Context, logger zerolog.Logger, opts options) error {
	if opts.bankroll <= 0 {
		return fmt.Errorf("risk mode needs -bankroll > 0")
	}
	pt, err := loadPayTable(opts)
	if err != nil {
		return err
	}
	bonusCfg, err := loadBonus(opts, pt.Ruleset)
	if err != nil {
		return err
	}
	policy, err := loadPolicy(opts, pt)
	if err != nil {
		return err
	}

	logger.Info().
		Float64("bankroll", opts.bankroll).
		Int("runs", opts.runs).
		Int("rounds", opts.rounds).
		Msg("estimating risk of ruin")

	batch, err := sim.Batch(ctx, sim.BatchRequest{
		Config: sim.Config{
			PayTable: pt,
			Policy:   policy,
			Bonus:    bonusCfg,
			Seed:     opts.seed,
			Rounds:   opts.rounds,
			Bet:      opts.bet,
			Bankroll: opts.bankroll,
		},
		Runs:    opts.runs,
		Workers: opts.workers,
	})
	if err != nil {
		return err
	}

	est, err := risk.RuinEstimate(batch, opts.resamples, opts.confidence, opts.seed)
	if err != nil {
		return err
	}
	return renderRisk(pt, policy, opts, est)
}

func runSolve(ctx context.Context, logger zerolog.Logger, opts options) error {
	pt, err := loadPayTable(opts)
	if err != nil {
		return err
	}
	opt, err := strategy.NewOptimizer(pt)
	if err != nil {
		return err
	}

	logger.Info().Str("paytable", pt.Name).Msg("solving all dealt-hand classes; this enumerates every draw")
	start := time.Now()
	table, err := strategy.BuildTable(ctx, opt, opts.workers)
	if err != nil {
		return err
	}
	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("classes", table.Classes()).
		Msg("table solved")

	if err := renderSolved(pt, table); err != nil {
		return err
	}
	if opts.dbPath != "" {
		return persistTable(logger, opts, pt, table)
	}
	return nil
}
