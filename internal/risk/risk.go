// Package risk estimates risk of ruin from batch simulation results. The
// point estimate is the fraction of runs that went bust; the uncertainty
// around it comes from a seeded bootstrap, so the interval is reproducible
// alongside the simulation itself.
package risk

import (
	"fmt"
	"sort"

	"github.com/vpresearch/vipor/internal/rng"
	"github.com/vpresearch/vipor/internal/sim"
)

// DefaultResamples is the bootstrap resample count used when the caller
// passes zero.
const DefaultResamples = 2000

// Estimate is a risk-of-ruin estimate with its bootstrap interval.
type Estimate struct {
	// Probability is the observed ruin fraction.
	Probability float64
	// Lower and Upper bound the percentile bootstrap interval at the
	// requested confidence.
	Lower float64
	Upper float64

	Confidence float64
	Runs       int
	Ruined     int
	Resamples  int
}

// RuinEstimate bootstraps the ruin probability of a batch. Resampling draws
// from the stream (seed, 0), which simulation runs never touch (their rounds
// start at stream 1), so estimate and simulation can share a seed without
// overlapping randomness. Confidence defaults to 0.95 when zero.
func RuinEstimate(batch *sim.BatchResult, resamples int, confidence float64, seed string) (*Estimate, error) {
	if batch == nil || len(batch.Runs) == 0 {
		return nil, fmt.Errorf("risk: batch has no runs to estimate from")
	}
	if confidence == 0 {
		confidence = 0.95
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("risk: confidence %v outside (0, 1)", confidence)
	}
	if resamples <= 0 {
		resamples = DefaultResamples
	}

	n := len(batch.Runs)
	ruined := 0
	for _, run := range batch.Runs {
		if run.Ruined {
			ruined++
		}
	}

	est := &Estimate{
		Probability: float64(ruined) / float64(n),
		Confidence:  confidence,
		Runs:        n,
		Ruined:      ruined,
		Resamples:   resamples,
	}

	// All runs agree; resampling cannot produce anything else.
	if ruined == 0 || ruined == n {
		est.Lower = est.Probability
		est.Upper = est.Probability
		return est, nil
	}

	stream := rng.NewStream(seed, 0)
	fractions := make([]float64, resamples)
	for i := range fractions {
		hits := 0
		for j := 0; j < n; j++ {
			if batch.Runs[stream.Uint32n(uint32(n))].Ruined {
				hits++
			}
		}
		fractions[i] = float64(hits) / float64(n)
	}
	sort.Float64s(fractions)

	alpha := (1 - confidence) / 2
	est.Lower = percentile(fractions, alpha)
	est.Upper = percentile(fractions, 1-alpha)
	return est, nil
}

// percentile picks the nearest-rank percentile from a sorted sample.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
