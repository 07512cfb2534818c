package cards

import (
	"errors"
	"fmt"

	"github.com/vpresearch/vipor/internal/rng"
)

// ErrDeckExhausted reports a draw request exceeding the remaining cards.
// This is fatal to the current round: valid play never draws more than the
// deck holds, so hitting it signals a configuration bug.
var ErrDeckExhausted = errors.New("cards: deck exhausted")

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

var fullDeck [DeckSize]Card

func init() {
	i := 0
	for _, suit := range []int32{1, 2, 4, 8} {
		for rank := int32(0); rank < 13; rank++ {
			fullDeck[i] = makeCard(rank, suit)
			i++
		}
	}
}

// FullDeck returns all 52 unique cards in a fixed order.
func FullDeck() []Card {
	deck := make([]Card, DeckSize)
	copy(deck[:], fullDeck[:])
	return deck
}

// Remaining returns the 52-len(held) cards not present in held. The order is
// the fixed full-deck order; callers enumerating replacement draws depend on
// it being deterministic.
func Remaining(held []Card) []Card {
	out := make([]Card, 0, DeckSize-len(held))
	for _, c := range fullDeck {
		excluded := false
		for _, h := range held {
			if c == h {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, c)
		}
	}
	return out
}

// Deck holds the undrawn portion of a 52-card deck. Draws remove cards until
// Reset restores the full deck. All randomness comes from the injected
// stream, so a deck built from the same stream state deals identically.
type Deck struct {
	cards  []Card
	stream *rng.Stream
}

// NewDeck returns a full shuffled deck drawing its randomness from stream.
func NewDeck(stream *rng.Stream) *Deck {
	deck := &Deck{
		cards:  make([]Card, DeckSize),
		stream: stream,
	}
	copy(deck.cards, fullDeck[:])
	deck.shuffle()
	return deck
}

// NewDeckNoShuffle returns a full deck in the fixed order. Useful for tests
// that need scripted deals.
func NewDeckNoShuffle() *Deck {
	deck := &Deck{cards: make([]Card, DeckSize)}
	copy(deck.cards, fullDeck[:])
	return deck
}

func (d *Deck) shuffle() {
	if d.stream == nil {
		return
	}
	d.stream.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Draw removes and returns the next n cards. Fails with ErrDeckExhausted if
// n exceeds the remaining count.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("cards: invalid draw count %d", n)
	}
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: requested %d with %d remaining", ErrDeckExhausted, n, len(d.cards))
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn, nil
}

// Reset restores all 52 cards and reshuffles from the deck's stream.
func (d *Deck) Reset() {
	d.cards = make([]Card, DeckSize)
	copy(d.cards, fullDeck[:])
	d.shuffle()
}
