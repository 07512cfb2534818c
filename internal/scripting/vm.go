// Package scripting hosts user-written hold strategies in a sandboxed
// JavaScript runtime. A script defines dohold(hand) and returns which cards
// to keep; the package adapts that into the strategy.Policy interface so
// scripted strategies run anywhere a built-in policy does.
package scripting

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/vpresearch/vipor/internal/cards"
)

// LogEntry is one message emitted by the script's log().
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second

	maxLogEntries = 500
)

// Policy runs a user script's dohold() for each dealt hand. A goja runtime
// is single-threaded, so all calls serialize on an internal mutex; the
// policy is safe to share across simulation workers, at the cost of the
// workers queueing on script execution.
type Policy struct {
	name    string
	runtime *goja.Runtime
	mu      sync.Mutex

	logs   []LogEntry
	logsMu sync.Mutex
}

// NewPolicy compiles and initializes a script. The source runs once, with a
// timeout, and must leave a dohold function defined.
func NewPolicy(name, source string) (*Policy, error) {
	p := &Policy{
		name:    name,
		runtime: goja.New(),
	}
	p.injectGlobals()

	err := p.runWithTimeout(scriptInitTimeout, func() error {
		if _, err := p.runtime.RunString(source); err != nil {
			return fmt.Errorf("scripting: %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fn := p.runtime.Get("dohold")
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return nil, fmt.Errorf("scripting: %s: dohold() is not defined", name)
	}
	if _, ok := goja.AssertFunction(fn); !ok {
		return nil, fmt.Errorf("scripting: %s: dohold is not a function", name)
	}
	return p, nil
}

// injectGlobals registers log/console.log and the rank constants, and blanks
// the escape hatches a hostile script could reach for.
func (p *Policy) injectGlobals() {
	p.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		p.logsMu.Lock()
		if len(p.logs) >= maxLogEntries {
			p.logs = p.logs[1:]
		}
		p.logs = append(p.logs, LogEntry{Time: time.Now(), Message: msg})
		p.logsMu.Unlock()

		return goja.Undefined()
	})

	console := p.runtime.NewObject()
	console.Set("log", p.runtime.Get("log"))
	p.runtime.Set("console", console)

	// Rank indices matching the hand objects' rank field.
	ranks := p.runtime.NewObject()
	for i, name := range []string{"TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN",
		"EIGHT", "NINE", "TEN", "JACK", "QUEEN", "KING", "ACE"} {
		ranks.Set(name, i)
	}
	p.runtime.Set("RANK", ranks)

	p.runtime.Set("require", goja.Undefined())
	p.runtime.Set("fetch", goja.Undefined())
	p.runtime.Set("XMLHttpRequest", goja.Undefined())
	p.runtime.Set("eval", goja.Undefined())
	p.runtime.Set("Function", goja.Undefined())
}

// Name implements strategy.Policy.
func (p *Policy) Name() string {
	return "script:" + p.name
}

// Hold implements strategy.Policy. The script sees the hand as five objects:
//
//	{ card: "Js", rank: 9, suit: "s" }
//
// and may return a hold in any of three forms: a bitmask number, an array of
// position indices, or an array of five booleans.
func (p *Policy) Hold(hand []cards.Card) (int, error) {
	if len(hand) != 5 {
		return 0, fmt.Errorf("scripting: hand must have exactly 5 cards, got %d", len(hand))
	}

	var result goja.Value
	err := p.runWithTimeout(scriptCallTimeout, func() error {
		p.mu.Lock()
		defer p.mu.Unlock()

		fn := p.runtime.Get("dohold")
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return fmt.Errorf("scripting: %s: dohold is not a function", p.name)
		}

		items := make([]interface{}, len(hand))
		for i, c := range hand {
			obj := p.runtime.NewObject()
			obj.Set("card", c.String())
			obj.Set("rank", int(c.Rank()))
			obj.Set("suit", c.String()[1:])
			items[i] = obj
		}

		out, err := callable(goja.Undefined(), p.runtime.ToValue(items))
		if err != nil {
			return fmt.Errorf("scripting: %s: dohold(): %w", p.name, err)
		}
		result = out
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.maskFromResult(result)
}

func (p *Policy) maskFromResult(v goja.Value) (int, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0, fmt.Errorf("scripting: %s: dohold() returned nothing", p.name)
	}

	var exported interface{}
	func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		exported = v.Export()
	}()

	switch val := exported.(type) {
	case int64:
		if val < 0 || val > 31 {
			return 0, fmt.Errorf("scripting: %s: hold mask %d outside 0..31", p.name, val)
		}
		return int(val), nil
	case float64:
		mask := int(val)
		if float64(mask) != val || mask < 0 || mask > 31 {
			return 0, fmt.Errorf("scripting: %s: hold mask %v outside 0..31", p.name, val)
		}
		return mask, nil
	case []interface{}:
		return maskFromSlice(p.name, val)
	default:
		return 0, fmt.Errorf("scripting: %s: dohold() returned %T, want number or array", p.name, exported)
	}
}

func maskFromSlice(name string, items []interface{}) (int, error) {
	// Five booleans mean hold-by-position; anything else is index form.
	if len(items) == 5 {
		allBool := true
		for _, item := range items {
			if _, ok := item.(bool); !ok {
				allBool = false
				break
			}
		}
		if allBool {
			mask := 0
			for i, item := range items {
				if item.(bool) {
					mask |= 1 << i
				}
			}
			return mask, nil
		}
	}

	mask := 0
	for _, item := range items {
		var idx int
		switch n := item.(type) {
		case int64:
			idx = int(n)
		case float64:
			idx = int(n)
			if float64(idx) != n {
				return 0, fmt.Errorf("scripting: %s: non-integer hold index %v", name, n)
			}
		default:
			return 0, fmt.Errorf("scripting: %s: hold index is %T, want number", name, item)
		}
		if idx < 0 || idx > 4 {
			return 0, fmt.Errorf("scripting: %s: hold index %d outside 0..4", name, idx)
		}
		mask |= 1 << idx
	}
	return mask, nil
}

// Logs returns a copy of the script's log buffer.
func (p *Policy) Logs() []LogEntry {
	p.logsMu.Lock()
	defer p.logsMu.Unlock()
	out := make([]LogEntry, len(p.logs))
	copy(out, p.logs)
	return out
}

func (p *Policy) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		p.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("scripting: %s: timed out: %w", p.name, err)
			}
			return fmt.Errorf("scripting: %s: timed out", p.name)
		case <-time.After(200 * time.Millisecond):
			return fmt.Errorf("scripting: %s: timed out", p.name)
		}
	}
}
