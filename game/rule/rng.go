package rule

import "math"

// RandomSource is the randomness consumed by the engines.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

// RNGState is the persisted position of a deterministic random stream.
// Replaying intents from the same state yields the same outcomes.
type RNGState struct {
	Seed    uint64 `json:"seed"`
	Counter uint64 `json:"counter"`
}

// Stream is a counter-based splitmix64 generator. Each value is a function of
// (Seed, Counter) only, so the stream can be resumed from a stored RNGState.
type Stream struct {
	state RNGState
}

// NewStream resumes a stream at the given state.
func NewStream(state RNGState) *Stream {
	return &Stream{state: state}
}

// State returns the position after the values consumed so far.
func (s *Stream) State() RNGState { return s.state }

// Uint64 returns the next 64 random bits.
func (s *Stream) Uint64() uint64 {
	s.state.Counter++
	z := s.state.Seed + s.state.Counter*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// IntN uses Lemire's multiply-shift reduction on the top 32 bits.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		panic("rule: IntN with non-positive n")
	}
	if uint64(n) <= math.MaxUint32 {
		return int((s.Uint64() >> 32) * uint64(n) >> 32)
	}
	return int(s.Uint64() % uint64(n))
}

// RoundHalfUp rounds x to the nearest integer, halves away from zero for
// positive values. Damage and bonus calculations all round through here.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
