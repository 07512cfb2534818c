// Package strategy decides which cards to hold. The optimizer computes the
// exact expectation of every hold by enumerating replacement draws; simpler
// rule-based policies and precomputed tables share the same Policy interface
// so the simulator does not care which one it is running.
package strategy

import (
	"fmt"
	"sync"

	"github.com/vpresearch/vipor/internal/cards"
	"github.com/vpresearch/vipor/internal/eval"
	"github.com/vpresearch/vipor/internal/paytable"
)

// MaskAll holds all five cards; hold masks run 0..31 with bit i meaning
// "keep the card at dealt position i".
const MaskAll = 31

// Decision is the result of evaluating one hold for a dealt hand.
type Decision struct {
	// Mask has bit i set when the card at dealt position i is held.
	Mask int
	// EV is the exact expected payout of the hold, in bet units.
	EV float64
	// Held lists the held cards in dealt order.
	Held []cards.Card
}

// Optimizer computes exact per-hold expectations for a paytable.
//
// Two caches make repeated queries cheap. Completed 5-card hands are
// classified once per equivalence key (rank multiset plus flushness), and
// whole dealt hands are solved once per suit-isomorphism class: relabeling
// suits never changes any hold's expectation, so the 2,598,960 dealt hands
// collapse to 134,459 classes. Both caches are safe for concurrent use.
type Optimizer struct {
	eval *eval.Evaluator
	pay  *paytable.PayTable

	mu      sync.RWMutex
	catMemo map[uint64]paytable.Category

	holdMu   sync.RWMutex
	holdMemo map[uint64]*[32]float64
}

// NewOptimizer builds an optimizer for the paytable.
func NewOptimizer(pt *paytable.PayTable) (*Optimizer, error) {
	if pt == nil {
		return nil, fmt.Errorf("strategy: nil paytable")
	}
	e, err := eval.New(pt.Ruleset)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	return &Optimizer{
		eval:     e,
		pay:      pt,
		catMemo:  make(map[uint64]paytable.Category),
		holdMemo: make(map[uint64]*[32]float64),
	}, nil
}

// PayTable returns the paytable the optimizer maximizes against.
func (o *Optimizer) PayTable() *paytable.PayTable {
	return o.pay
}

// BestHold returns the expectation-maximizing hold for a dealt hand.
// Ties break toward holding fewer cards, then toward the lower mask in the
// hand's canonical orientation. Resolving exact ties canonically makes the
// choice a property of the isomorphism class, so BestHold and a Table solved
// for the same paytable pick identical holds for every dealt hand.
func (o *Optimizer) BestHold(hand []cards.Card) (Decision, error) {
	evs, order, err := o.handEVs(hand)
	if err != nil {
		return Decision{}, err
	}

	best, bestEV := -1, 0.0
	for mask := 0; mask <= MaskAll; mask++ {
		if best < 0 || betterHold(mask, evs[mask], best, bestEV) {
			best = mask
			bestEV = evs[mask]
		}
	}
	dealt := dealtMask(best, order)
	return Decision{Mask: dealt, EV: bestEV, Held: heldCards(hand, dealt)}, nil
}

// HoldEV returns the exact expectation of one specific hold. Used for
// frozen-hand analysis, where the question is "what is this hold worth",
// not "what is the best hold".
func (o *Optimizer) HoldEV(hand []cards.Card, mask int) (float64, error) {
	if mask < 0 || mask > MaskAll {
		return 0, fmt.Errorf("strategy: hold mask %d outside 0..31", mask)
	}
	evs, order, err := o.handEVs(hand)
	if err != nil {
		return 0, err
	}
	return evs[canonicalMask(mask, order)], nil
}

// Holds returns all 32 hold decisions for a dealt hand, best first. The
// ordering uses the same tie-break as BestHold.
func (o *Optimizer) Holds(hand []cards.Card) ([]Decision, error) {
	evs, order, err := o.handEVs(hand)
	if err != nil {
		return nil, err
	}

	out := make([]Decision, 0, 32)
	canon := make([]int, 0, 32)
	for mask := 0; mask <= MaskAll; mask++ {
		dealt := dealtMask(mask, order)
		out = append(out, Decision{
			Mask: dealt,
			EV:   evs[mask],
			Held: heldCards(hand, dealt),
		})
		canon = append(canon, mask)
	}
	// Insertion sort; 32 elements. Ties compare canonical masks, matching
	// BestHold.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && betterHold(canon[j], out[j].EV, canon[j-1], out[j-1].EV); j-- {
			out[j], out[j-1] = out[j-1], out[j]
			canon[j], canon[j-1] = canon[j-1], canon[j]
		}
	}
	return out, nil
}

// betterHold reports whether (mask a, ev a) beats (mask b, ev b) under the
// documented tie-break: higher expectation, then fewer held cards, then the
// lower mask value. Callers compare canonical masks, so the final rule is
// orientation-independent.
func betterHold(aMask int, aEV float64, bMask int, bEV float64) bool {
	if aEV != bEV {
		return aEV > bEV
	}
	if pa, pb := popcount5(aMask), popcount5(bMask); pa != pb {
		return pa < pb
	}
	return aMask < bMask
}

// handEVs returns the canonical 32-entry expectation array for the hand's
// suit-isomorphism class and the position mapping needed to translate dealt
// masks into canonical ones.
func (o *Optimizer) handEVs(hand []cards.Card) (*[32]float64, [5]int, error) {
	if err := checkHand(hand); err != nil {
		return nil, [5]int{}, err
	}
	key, order, canon := canonicalize(hand)

	o.holdMu.RLock()
	evs, ok := o.holdMemo[key]
	o.holdMu.RUnlock()
	if ok {
		return evs, order, nil
	}

	evs = o.solveCanonical(canon)

	o.holdMu.Lock()
	if prior, ok := o.holdMemo[key]; ok {
		evs = prior
	} else {
		o.holdMemo[key] = evs
	}
	o.holdMu.Unlock()
	return evs, order, nil
}

// solveCanonical computes the expectation of every hold for the canonical
// representative of an isomorphism class. Holding k cards means averaging
// the payout over all C(47, 5-k) replacement draws from the remaining deck.
func (o *Optimizer) solveCanonical(canon [5]cards.Card) *[32]float64 {
	remaining := cards.Remaining(canon[:])
	var evs [32]float64

	hand := make([]cards.Card, 5)
	for mask := 0; mask <= MaskAll; mask++ {
		held := hand[:0]
		for i := 0; i < 5; i++ {
			if mask&(1<<i) != 0 {
				held = append(held, canon[i])
			}
		}
		need := 5 - len(held)
		if need == 0 {
			evs[mask] = float64(o.payout(hand))
			continue
		}

		var sum int64
		var draws int64
		forEachCombination(len(remaining), need, func(idx []int) {
			for j, r := range idx {
				hand[len(held)+j] = remaining[r]
			}
			sum += int64(o.payout(hand))
			draws++
		})
		evs[mask] = float64(sum) / float64(draws)
	}
	return &evs
}

// payout classifies a completed hand and looks up its pay, memoizing by the
// evaluator's equivalence key.
func (o *Optimizer) payout(hand []cards.Card) int {
	key := o.eval.Key(hand)

	o.mu.RLock()
	cat, ok := o.catMemo[key]
	o.mu.RUnlock()
	if !ok {
		cat = o.eval.Classify(hand)
		o.mu.Lock()
		o.catMemo[key] = cat
		o.mu.Unlock()
	}
	return o.pay.Payout(cat)
}

func checkHand(hand []cards.Card) error {
	if len(hand) != 5 {
		return fmt.Errorf("strategy: hand must have exactly 5 cards, got %d", len(hand))
	}
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			if hand[i] == hand[j] {
				return fmt.Errorf("strategy: duplicate card %s in hand", hand[i])
			}
		}
	}
	return nil
}

func heldCards(hand []cards.Card, mask int) []cards.Card {
	held := make([]cards.Card, 0, 5)
	for i := 0; i < 5; i++ {
		if mask&(1<<i) != 0 {
			held = append(held, hand[i])
		}
	}
	return held
}

func popcount5(mask int) int {
	n := 0
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}

// forEachCombination visits every k-subset of 0..n-1 in lexicographic order.
// The index slice is reused between calls.
func forEachCombination(n, k int, fn func(idx []int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
