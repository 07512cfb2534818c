package sim

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/vpresearch/vipor/internal/paytable"
)

// BatchRequest fans one run configuration out across independent runs. Run
// index i derives its seed as "<Seed>:<i>", so every run is reproducible in
// isolation and the batch outcome does not depend on worker scheduling.
type BatchRequest struct {
	Config Config
	// Runs is the number of independent runs.
	Runs int
	// Workers caps the worker pool; GOMAXPROCS when <= 0.
	Workers int
}

// RunSummary is the per-run slice of a batch result, kept for risk analysis.
type RunSummary struct {
	Index         int
	Seed          string
	Rounds        int
	Net           float64
	Ruined        bool
	RuinRound     int
	FinalBankroll float64
	// Trajectory is the run's per-round bankroll sequence; nil when the
	// batch ran without bankroll tracking.
	Trajectory []float64
}

// BatchResult aggregates a batch. Runs are ordered by index regardless of
// completion order.
type BatchResult struct {
	Runs      []RunSummary
	Aggregate Result
	// RuinedRuns counts runs that hit ruin; Excluded counts runs dropped
	// because they failed (a scripted policy throwing, for instance).
	RuinedRuns int
	Excluded   int
}

type runOutcome struct {
	index int
	res   *Result
	err   error
}

// Batch runs the request's runs on a worker pool and merges their results.
// Per-round net statistics merge with the commutative Stats.Merge, so the
// aggregate is identical no matter which worker finished first. A failing
// run is excluded and counted, not fatal to the batch; cancellation stops
// all workers at their next round boundary.
func Batch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if req.Runs <= 0 {
		return nil, fmt.Errorf("sim: batch needs at least one run, got %d", req.Runs)
	}
	if err := req.Config.validate(); err != nil {
		return nil, err
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > req.Runs {
		workers = req.Runs
	}

	jobs := make(chan int, workers*2)
	outcomes := make(chan runOutcome, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				cfg := req.Config
				cfg.Seed = fmt.Sprintf("%s:%d", req.Config.Seed, idx)
				res, err := Run(ctx, cfg)
				select {
				case outcomes <- runOutcome{index: idx, res: res, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := 0; idx < req.Runs; idx++ {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	out := &BatchResult{
		Runs: make([]RunSummary, 0, req.Runs),
		Aggregate: Result{
			Seed:       req.Config.Seed,
			Categories: make(map[paytable.Category]int64),
		},
	}
	for oc := range outcomes {
		if oc.err != nil {
			out.Excluded++
			continue
		}
		merge(&out.Aggregate, oc.res)
		if oc.res.Ruined {
			out.RuinedRuns++
		}
		out.Runs = append(out.Runs, RunSummary{
			Index:         oc.index,
			Seed:          oc.res.Seed,
			Rounds:        oc.res.Rounds,
			Net:           oc.res.TotalWon - oc.res.TotalBet,
			Ruined:        oc.res.Ruined,
			RuinRound:     oc.res.RuinRound,
			FinalBankroll: oc.res.FinalBankroll,
			Trajectory:    oc.res.Trajectory,
		})
	}

	if ctx.Err() != nil && len(out.Runs) == 0 {
		return nil, ctx.Err()
	}

	sort.Slice(out.Runs, func(i, j int) bool { return out.Runs[i].Index < out.Runs[j].Index })
	return out, nil
}

// merge folds one run into the aggregate. Every field is order-independent:
// sums, counters, and the Welford merge.
func merge(agg *Result, res *Result) {
	agg.Rounds += res.Rounds
	agg.TotalBet += res.TotalBet
	agg.TotalWon += res.TotalWon
	agg.Net.Merge(res.Net)
	for cat, n := range res.Categories {
		agg.Categories[cat] += n
	}
	if res.Interrupted {
		agg.Interrupted = true
	}
}
