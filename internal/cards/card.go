package cards

import (
	"fmt"
	"strings"
)

// Card is a bit-packed playing card:
//
//	bits 16..28  one-hot rank bit (used for straight detection)
//	bits 12..15  suit (1 spade, 2 heart, 4 diamond, 8 club)
//	bits  8..11  rank index 0..12 (0 = deuce, 12 = ace)
//	bits  0..7   rank prime (used for equivalence keys)
//
// The layout lets a flush be detected by AND-ing suits and a hand's
// rank multiset be keyed by multiplying primes, without unpacking.
type Card int32

const strRanks = "23456789TJQKA"

// Rank indices for the ranks the evaluator treats specially.
const (
	RankTwo   = 0
	RankThree = 1
	RankFour  = 2
	RankFive  = 3
	RankTen   = 8
	RankJack  = 9
	RankQueen = 10
	RankKing  = 11
	RankAce   = 12
)

var primes = [13]int32{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}

var (
	charRankToIntRank = map[byte]int32{}
	charSuitToIntSuit = map[byte]int32{
		's': 1,
		'h': 2,
		'd': 4,
		'c': 8,
	}
	intSuitToCharSuit = "xshxdxxxc"
)

func init() {
	for i := 0; i < len(strRanks); i++ {
		charRankToIntRank[strRanks[i]] = int32(i)
	}
}

func makeCard(rankInt, suitInt int32) Card {
	bitRank := int32(1) << uint32(rankInt) << 16
	suit := suitInt << 12
	rank := rankInt << 8
	return Card(bitRank | suit | rank | primes[rankInt])
}

// NewCard builds a card from a two-character string like "As" or "Th".
// It panics on malformed input; use ParseCard for untrusted strings.
func NewCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCard parses a two-character card token. Rank characters are
// 2-9, T, J, Q, K, A (case-insensitive); suits are s, h, d, c.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("cards: invalid card %q: want rank and suit characters", s)
	}
	rankInt, ok := charRankToIntRank[strings.ToUpper(s)[0]]
	if !ok {
		return 0, fmt.Errorf("cards: invalid rank in %q", s)
	}
	suitInt, ok := charSuitToIntSuit[strings.ToLower(s)[1]]
	if !ok {
		return 0, fmt.Errorf("cards: invalid suit in %q", s)
	}
	return makeCard(rankInt, suitInt), nil
}

// ParseHand parses a 5-card hand from tokens separated by spaces or commas,
// e.g. "As Ks Qs Js Ts". Duplicate cards are rejected.
func ParseHand(s string) ([]Card, error) {
	tokens := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(tokens) != 5 {
		return nil, fmt.Errorf("cards: hand %q must have exactly 5 cards, got %d", s, len(tokens))
	}
	hand := make([]Card, 5)
	seen := map[Card]bool{}
	for i, tok := range tokens {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("cards: hand %q contains duplicate card %s", s, c)
		}
		seen[c] = true
		hand[i] = c
	}
	return hand, nil
}

func (c Card) String() string {
	return string(strRanks[c.Rank()]) + string(intSuitToCharSuit[c.Suit()])
}

// Rank returns the rank index 0..12 (0 = deuce, 12 = ace).
func (c Card) Rank() int32 {
	return (int32(c) >> 8) & 0xF
}

// Suit returns the suit bit (1, 2, 4 or 8).
func (c Card) Suit() int32 {
	return (int32(c) >> 12) & 0xF
}

// BitRank returns the one-hot rank bit.
func (c Card) BitRank() int32 {
	return (int32(c) >> 16) & 0x1FFF
}

// Prime returns the rank prime.
func (c Card) Prime() int32 {
	return int32(c) & 0xFF
}

// PrimeProduct multiplies the rank primes of a hand. Two hands share a
// product exactly when they hold the same multiset of ranks, which makes it
// the integer key for rank-pattern lookups. For 5 cards the product fits
// comfortably in int64 (max 41^5).
func PrimeProduct(hand []Card) int64 {
	product := int64(1)
	for _, c := range hand {
		product *= int64(c.Prime())
	}
	return product
}

// RankBits ORs the one-hot rank bits of a hand.
func RankBits(hand []Card) int32 {
	var bits int32
	for _, c := range hand {
		bits |= c.BitRank()
	}
	return bits
}

// HandString formats a hand as space-separated card tokens.
func HandString(hand []Card) string {
	var b strings.Builder
	for i, c := range hand {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}
