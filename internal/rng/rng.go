package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// Stream is a deterministic random byte stream derived from a seed string and
// a nonce using HMAC-SHA256 in counter mode. Two streams built from the same
// (seed, nonce) pair produce identical output, so any consumer of a Stream is
// fully replayable. The simulator gives every round its own nonce, which
// makes a single round reproducible without replaying the rounds before it.
type Stream struct {
	seed        string
	nonce       uint64
	round       int
	roundCursor int
	buffer      [32]byte
}

// NewStream creates a stream positioned at the beginning of its byte output.
func NewStream(seed string, nonce uint64) *Stream {
	return &Stream{seed: seed, nonce: nonce}
}

// Next returns the next byte from the stream.
func (s *Stream) Next() byte {
	if s.roundCursor >= 32 {
		s.round++
		s.roundCursor = 0
	}

	if s.roundCursor == 0 {
		s.generateRound()
	}

	b := s.buffer[s.roundCursor]
	s.roundCursor++
	return b
}

func (s *Stream) generateRound() {
	h := hmac.New(sha256.New, []byte(s.seed))
	message := fmt.Sprintf("%d:%d", s.nonce, s.round)
	h.Write([]byte(message))
	copy(s.buffer[:], h.Sum(nil))
}

// Uint32 returns the next 4 bytes as a big-endian uint32.
func (s *Stream) Uint32() uint32 {
	b0 := uint32(s.Next())
	b1 := uint32(s.Next())
	b2 := uint32(s.Next())
	b3 := uint32(s.Next())
	return b0<<24 | b1<<16 | b2<<8 | b3
}

// Uint32n returns a uniform value in [0, n). Rejection sampling keeps the
// result unbiased for every n, not just powers of two. Panics if n is zero.
func (s *Stream) Uint32n(n uint32) uint32 {
	if n == 0 {
		panic("rng: Uint32n called with n == 0")
	}
	// Largest multiple of n that fits in a uint32.
	limit := (1 << 32) - uint64(1<<32)%uint64(n)
	for {
		v := s.Uint32()
		if uint64(v) < limit {
			return v % n
		}
	}
}

// Float64 returns a value in [0, 1) built from 4 bytes of the stream.
func (s *Stream) Float64() float64 {
	b0 := s.Next()
	b1 := s.Next()
	b2 := s.Next()
	b3 := s.Next()

	return float64(b0)/256.0 +
		float64(b1)/(256.0*256.0) +
		float64(b2)/(256.0*256.0*256.0) +
		float64(b3)/(256.0*256.0*256.0*256.0)
}

// Die returns a single die roll in [1, 6].
func (s *Stream) Die() int {
	return int(s.Uint32n(6)) + 1
}

// Shuffle performs a Fisher-Yates shuffle over n elements using the stream.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(s.Uint32n(uint32(i + 1)))
		swap(i, j)
	}
}

// Floats generates count floats in [0, 1) for the given seed, nonce and byte
// cursor. It mirrors the per-call form used by golden-vector tests; hot paths
// should hold a Stream instead.
func Floats(seed string, nonce uint64, cursor int, count int) []float64 {
	s := NewStream(seed, nonce)
	for i := 0; i < cursor; i++ {
		s.Next()
	}
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = s.Float64()
	}
	return floats
}
