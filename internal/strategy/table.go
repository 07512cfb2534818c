package strategy

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/paytable"
)

// Table is a fully solved strategy: the best hold for every suit-isomorphism
// class of dealt hands, precomputed so lookups during simulation are a map
// access instead of a C(47,k) enumeration. Immutable once built.
type Table struct {
	payName string
	ruleset paytable.Ruleset
	entries map[uint64]tableEntry
	overall float64
}

// tableEntry stores the best hold in canonical-position form; Hold
// translates it back to dealt positions per lookup.
type tableEntry struct {
	mask int8
	ev   float64
}

// BuildTable solves every dealt hand class for the optimizer's paytable.
// Work is split across workers (GOMAXPROCS when workers <= 0) by first-card
// index; each worker solves its share of classes and the partial results
// merge at the end. Cancellation is checked between hands, so a canceled
// context abandons the build promptly with ctx.Err().
func BuildTable(ctx context.Context, opt *Optimizer, workers int) (*Table, error) {
	if opt == nil {
		return nil, fmt.Errorf("strategy: nil optimizer")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	deck := cards.FullDeck()
	var mu sync.Mutex
	entries := make(map[uint64]tableEntry)
	var evSum float64
	var hands int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for first := 0; first < cards.DeckSize-4; first++ {
		first := first
		g.Go(func() error {
			local := make(map[uint64]tableEntry)
			localSum := 0.0
			localHands := int64(0)
			hand := make([]cards.Card, 5)
			hand[0] = deck[first]

			for b := first + 1; b < cards.DeckSize-3; b++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for c := b + 1; c < cards.DeckSize-2; c++ {
					for d := c + 1; d < cards.DeckSize-1; d++ {
						for e := d + 1; e < cards.DeckSize; e++ {
							hand[1], hand[2], hand[3], hand[4] = deck[b], deck[c], deck[d], deck[e]

							key, _, canon := canonicalize(hand)
							entry, ok := local[key]
							if !ok {
								entry, ok = lookupShared(&mu, entries, key)
							}
							if !ok {
								entry = solveEntry(opt, canon)
							}
							local[key] = entry
							localSum += entry.ev
							localHands++
						}
					}
				}
			}

			mu.Lock()
			for k, v := range local {
				entries[k] = v
			}
			evSum += localSum
			hands += localHands
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Table{
		payName: opt.pay.Name,
		ruleset: opt.pay.Ruleset,
		entries: entries,
		overall: evSum / float64(hands),
	}, nil
}

func lookupShared(mu *sync.Mutex, entries map[uint64]tableEntry, key uint64) (tableEntry, bool) {
	mu.Lock()
	entry, ok := entries[key]
	mu.Unlock()
	return entry, ok
}

// solveEntry finds the canonical best hold for one class: highest
// expectation, ties toward fewer held cards, then the lower canonical mask.
func solveEntry(opt *Optimizer, canon [5]cards.Card) tableEntry {
	evs := opt.solveCanonical(canon)
	best := tableEntry{mask: -1}
	for mask := 0; mask <= MaskAll; mask++ {
		if best.mask < 0 || betterHold(mask, evs[mask], int(best.mask), best.ev) {
			best = tableEntry{mask: int8(mask), ev: evs[mask]}
		}
	}
	return best
}

// OverallReturn is the expected payout per bet unit under perfect play:
// the best-hold expectation averaged over all equally likely dealt hands.
func (t *Table) OverallReturn() float64 {
	return t.overall
}

// Classes returns the number of distinct dealt-hand classes in the table.
func (t *Table) Classes() int {
	return len(t.entries)
}

// Ruleset returns the ruleset the table was solved under.
func (t *Table) Ruleset() paytable.Ruleset {
	return t.ruleset
}

// Name implements Policy.
func (t *Table) Name() string {
	return "table:" + t.payName
}

// Hold implements Policy by looking up the hand's class and translating the
// stored canonical mask back to dealt positions. The stored mask was chosen
// with the canonical tie-break, so the result always matches BestHold.
func (t *Table) Hold(hand []cards.Card) (int, error) {
	if err := checkHand(hand); err != nil {
		return 0, err
	}
	key, order, _ := canonicalize(hand)
	entry, ok := t.entries[key]
	if !ok {
		return 0, fmt.Errorf("strategy: table %s has no entry for %s", t.payName, cards.HandString(hand))
	}
	return dealtMask(int(entry.mask), order), nil
}

// Snapshot is the serializable form of a table, for persistence.
type Snapshot struct {
	PayTable string          `json:"pay_table"`
	Ruleset  string          `json:"ruleset"`
	Overall  float64         `json:"overall_return"`
	Entries  []SnapshotEntry `json:"entries"`
}

// SnapshotEntry is one solved class.
type SnapshotEntry struct {
	Key  uint64  `json:"key"`
	Mask int8    `json:"mask"`
	EV   float64 `json:"ev"`
}

// Snapshot exports the table.
func (t *Table) Snapshot() *Snapshot {
	snap := &Snapshot{
		PayTable: t.payName,
		Ruleset:  string(t.ruleset),
		Overall:  t.overall,
		Entries:  make([]SnapshotEntry, 0, len(t.entries)),
	}
	for key, entry := range t.entries {
		snap.Entries = append(snap.Entries, SnapshotEntry{Key: key, Mask: entry.mask, EV: entry.ev})
	}
	return snap
}

// TableFromSnapshot rebuilds a table from its serialized form.
func TableFromSnapshot(snap *Snapshot) (*Table, error) {
	if snap == nil || len(snap.Entries) == 0 {
		return nil, fmt.Errorf("strategy: empty table snapshot")
	}
	t := &Table{
		payName: snap.PayTable,
		ruleset: paytable.Ruleset(snap.Ruleset),
		entries: make(map[uint64]tableEntry, len(snap.Entries)),
		overall: snap.Overall,
	}
	for _, e := range snap.Entries {
		if e.Mask < 0 || e.Mask > MaskAll {
			return nil, fmt.Errorf("strategy: snapshot entry %d has mask %d outside 0..31", e.Key, e.Mask)
		}
		t.entries[e.Key] = tableEntry{mask: e.Mask, ev: e.EV}
	}
	return t, nil
}
