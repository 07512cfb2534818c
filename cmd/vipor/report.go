package main

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vpresearch/vipor/internal/bonus"
	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
	"github.com/vpresearch/vipor/internal/risk"
	"github.com/vpresearch/vipor/internal/sim"
	"github.com/vpresearch/vipor/internal/store"
	"github.com/vpresearch/vipor/internal/strategy"
)

// percent renders a ratio as a percentage with four decimals, going through
// decimal so a 99.5439% return never prints as 99.54389999.
func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).Round(4).String() + "%"
}

func money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func maskString(mask int) string {
	if mask == 0 {
		return "discard all"
	}
	out := ""
	for i := 0; i < 5; i++ {
		if mask&(1<<i) != 0 {
			if out != "" {
				out += ","
			}
			out += fmt.Sprintf("%d", i)
		}
	}
	return out
}

// lowestBankroll scans the per-round bankroll trajectories for the deepest
// trough across all runs.
func lowestBankroll(runs []sim.RunSummary) (float64, bool) {
	low, ok := 0.0, false
	for _, run := range runs {
		for _, bank := range run.Trajectory {
			if !ok || bank < low {
				low, ok = bank, true
			}
		}
	}
	return low, ok
}

func runPayTables() error {
	for _, name := range paytable.BuiltinNames() {
		pt := paytable.Builtin(name)
		pterm.DefaultSection.Printf("%s (%s)\n", pt.Name, name)

		data := pterm.TableData{{"Category", "Pays"}}
		entries := pt.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if entry.Category == paytable.Nothing {
				continue
			}
			data = append(data, []string{entry.Category.Label(), fmt.Sprintf("%d", entry.Payout)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}
	return nil
}

func renderHolds(pt *paytable.PayTable, hand []cards.Card, holds []strategy.Decision, top int) error {
	pterm.DefaultSection.Printf("Best hold for %s (%s)\n", cards.HandString(hand), pt.Name)

	if top <= 0 || top > len(holds) {
		top = len(holds)
	}
	data := pterm.TableData{{"Rank", "Hold", "Cards", "EV"}}
	for i := 0; i < top; i++ {
		dec := holds[i]
		held := "—"
		if len(dec.Held) > 0 {
			held = cards.HandString(dec.Held)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			maskString(dec.Mask),
			held,
			fmt.Sprintf("%.6f", dec.EV),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderFrozen(pt *paytable.PayTable, hand []cards.Card, mask int, ev float64, best strategy.Decision) error {
	pterm.DefaultSection.Printf("Frozen hold for %s (%s)\n", cards.HandString(hand), pt.Name)

	data := pterm.TableData{
		{"Hold", "EV"},
		{maskString(mask), fmt.Sprintf("%.6f", ev)},
		{maskString(best.Mask) + " (best)", fmt.Sprintf("%.6f", best.EV)},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	if ev < best.EV {
		pterm.Info.Printf("cost of the frozen hold: %.6f bet units per hand\n", best.EV-ev)
	}
	return nil
}

func renderBatch(pt *paytable.PayTable, policy strategy.Policy, bonusCfg *bonus.Config, batch *sim.BatchResult, opts options) error {
	agg := &batch.Aggregate
	variant := "none"
	if bonusCfg != nil {
		variant = bonusCfg.Variant
	}

	pterm.DefaultSection.Printf("Simulation: %s, policy %s, bonus %s\n", pt.Name, policy.Name(), variant)

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Runs", fmt.Sprintf("%d (excluded %d)", len(batch.Runs), batch.Excluded)},
		{"Rounds", fmt.Sprintf("%d", agg.Rounds)},
		{"Total bet", money(agg.TotalBet)},
		{"Total won", money(agg.TotalWon)},
		{"Return", percent(agg.Return())},
		{"Net per round", fmt.Sprintf("%.6f ± %.6f", agg.Net.Mean, agg.Net.StdDev())},
	}
	if opts.bankroll > 0 {
		data = append(data, []string{"Ruined runs",
			fmt.Sprintf("%d / %d", batch.RuinedRuns, len(batch.Runs))})
		if low, ok := lowestBankroll(batch.Runs); ok {
			data = append(data, []string{"Lowest bankroll", money(low)})
		}
	}
	if agg.Interrupted {
		data = append(data, []string{"Interrupted", "yes (partial results)"})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	pterm.DefaultSection.Println("Outcome histogram")
	cats, err := paytable.Categories(pt.Ruleset)
	if err != nil {
		return err
	}
	hist := pterm.TableData{{"Category", "Count", "Frequency"}}
	for i := len(cats) - 1; i >= 0; i-- {
		cat := cats[i]
		count := agg.Categories[cat]
		if count == 0 {
			continue
		}
		freq := float64(count) / float64(agg.Rounds)
		hist = append(hist, []string{cat.Label(), fmt.Sprintf("%d", count), percent(freq)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(hist).Render()
}

func renderRisk(pt *paytable.PayTable, policy strategy.Policy, opts options, est *risk.Estimate) error {
	pterm.DefaultSection.Printf("Risk of ruin: %s, policy %s\n", pt.Name, policy.Name())

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Bankroll", money(opts.bankroll)},
		{"Horizon", fmt.Sprintf("%d rounds x %d bet", opts.rounds, opts.bet)},
		{"Runs", fmt.Sprintf("%d (%d ruined)", est.Runs, est.Ruined)},
		{"Ruin probability", percent(est.Probability)},
		{fmt.Sprintf("%.0f%% interval", est.Confidence*100),
			fmt.Sprintf("[%s, %s]", percent(est.Lower), percent(est.Upper))},
		{"Resamples", fmt.Sprintf("%d", est.Resamples)},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderSolved(pt *paytable.PayTable, table *strategy.Table) error {
	pterm.DefaultSection.Printf("Solved strategy for %s\n", pt.Name)

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Hand classes", fmt.Sprintf("%d", table.Classes())},
		{"Overall return", percent(table.OverallReturn())},
		{"House edge", percent(1 - table.OverallReturn())},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func openStore(opts options) (*store.SQLiteDB, error) {
	db, err := store.NewSQLiteDB(opts.dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func persistBatch(logger zerolog.Logger, opts options, pt *paytable.PayTable, policy strategy.Policy, bonusCfg *bonus.Config, batch *sim.BatchResult) error {
	db, err := openStore(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	variant := ""
	if bonusCfg != nil {
		variant = bonusCfg.Variant
	}
	agg := &batch.Aggregate
	row := &store.Batch{
		PayTable:     pt.Name,
		Ruleset:      string(pt.Ruleset),
		Variant:      variant,
		Policy:       policy.Name(),
		Seed:         opts.seed,
		Runs:         len(batch.Runs),
		RoundsPerRun: opts.rounds,
		Bet:          opts.bet,
		Bankroll:     opts.bankroll,
		TotalBet:     agg.TotalBet,
		TotalWon:     agg.TotalWon,
		NetMean:      agg.Net.Mean,
		NetStdDev:    agg.Net.StdDev(),
		RuinedRuns:   batch.RuinedRuns,
		Excluded:     batch.Excluded,
		Interrupted:  agg.Interrupted,
	}
	if err := db.SaveBatch(row); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}

	runs := make([]store.RunRow, 0, len(batch.Runs))
	for _, run := range batch.Runs {
		runs = append(runs, store.RunRow{
			RunIndex:      run.Index,
			Seed:          run.Seed,
			Rounds:        run.Rounds,
			Net:           run.Net,
			Ruined:        run.Ruined,
			RuinRound:     run.RuinRound,
			FinalBankroll: run.FinalBankroll,
		})
	}
	if err := db.SaveRuns(row.ID, runs); err != nil {
		return fmt.Errorf("save runs: %w", err)
	}

	counts := make(map[string]int64, len(agg.Categories))
	for cat, n := range agg.Categories {
		counts[cat.Key()] = n
	}
	if err := db.SaveCategoryCounts(row.ID, counts); err != nil {
		return fmt.Errorf("save category counts: %w", err)
	}

	logger.Info().Str("batch_id", row.ID).Str("db", opts.dbPath).Msg("batch persisted")
	return nil
}

func persistTable(logger zerolog.Logger, opts options, pt *paytable.PayTable, table *strategy.Table) error {
	db, err := openStore(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := json.Marshal(table.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	row := &store.StrategyTable{
		PayTable:      pt.Name,
		Ruleset:       string(pt.Ruleset),
		OverallReturn: table.OverallReturn(),
		Classes:       table.Classes(),
		SnapshotJSON:  string(snapshot),
	}
	if err := db.SaveStrategyTable(row); err != nil {
		return fmt.Errorf("save strategy table: %w", err)
	}

	logger.Info().Str("table_id", row.ID).Str("db", opts.dbPath).Msg("strategy table persisted")
	return nil
}
