package strategy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vpresearch/vipor/internal/cards"
)

// Policy picks a hold mask for a dealt hand. Implementations must be safe
// for concurrent use; the simulator shares one policy across its workers.
type Policy interface {
	Name() string
	Hold(hand []cards.Card) (int, error)
}

// Factory builds a policy. The optimizer carries the paytable and ruleset;
// rule-based policies that ignore expectations may ignore it.
type Factory func(opt *Optimizer) (Policy, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a policy factory under a name. Panics on a duplicate name;
// registration happens at init time, so a duplicate is a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("strategy: policy %q registered twice", name))
	}
	registry[name] = factory
}

// NewPolicy builds a registered policy by name.
func NewPolicy(name string, opt *Optimizer) (Policy, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("strategy: unknown policy %q (have: %s)", name, strings.Join(PolicyNames(), ", "))
	}
	return factory(opt)
}

// PolicyNames lists the registered policy names, sorted.
func PolicyNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("optimal", func(opt *Optimizer) (Policy, error) {
		if opt == nil {
			return nil, fmt.Errorf("strategy: policy %q needs an optimizer", "optimal")
		}
		return optimalPolicy{opt: opt}, nil
	})
	Register("hold-none", func(*Optimizer) (Policy, error) {
		return maskPolicy{name: "hold-none", mask: 0}, nil
	})
	Register("hold-all", func(*Optimizer) (Policy, error) {
		return maskPolicy{name: "hold-all", mask: MaskAll}, nil
	})
	Register("any-pair", func(*Optimizer) (Policy, error) {
		return pairPolicy{name: "any-pair", minRank: cards.RankTwo}, nil
	})
	Register("high-pair", func(*Optimizer) (Policy, error) {
		return pairPolicy{name: "high-pair", minRank: cards.RankJack}, nil
	})
}

// optimalPolicy plays the exact-expectation hold.
type optimalPolicy struct {
	opt *Optimizer
}

func (p optimalPolicy) Name() string { return "optimal" }

func (p optimalPolicy) Hold(hand []cards.Card) (int, error) {
	dec, err := p.opt.BestHold(hand)
	if err != nil {
		return 0, err
	}
	return dec.Mask, nil
}

// maskPolicy always returns the same mask. hold-none is the redraw-everything
// baseline; hold-all freezes the dealt hand.
type maskPolicy struct {
	name string
	mask int
}

func (p maskPolicy) Name() string { return p.name }

func (p maskPolicy) Hold(hand []cards.Card) (int, error) {
	if err := checkHand(hand); err != nil {
		return 0, err
	}
	return p.mask, nil
}

// pairPolicy holds every card whose rank appears at least twice and meets
// the minimum rank; everything else is discarded. With minRank at jack this
// is the classic keep-the-high-pair baseline.
type pairPolicy struct {
	name    string
	minRank int32
}

func (p pairPolicy) Name() string { return p.name }

func (p pairPolicy) Hold(hand []cards.Card) (int, error) {
	if err := checkHand(hand); err != nil {
		return 0, err
	}
	var counts [13]int8
	for _, c := range hand {
		counts[c.Rank()]++
	}
	mask := 0
	for i, c := range hand {
		if counts[c.Rank()] >= 2 && c.Rank() >= p.minRank {
			mask |= 1 << i
		}
	}
	return mask, nil
}
