package engine

import (
	"math/rand"
	"time"
)

// Rand is the randomness source for turbulence and collision rolls.
// Production uses a time-seeded math/rand generator; tests inject fixed
// sequences to make the physics deterministic.
type Rand interface {
	Float64() float64
}

// NewTimeSeededRand returns the production randomness source.
func NewTimeSeededRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// sequenceRand replays a fixed slice of values, cycling when exhausted.
type sequenceRand struct {
	values []float64
	index  int
}

// NewSequenceRand returns a Rand that cycles through the given values.
// Intended for tests.
func NewSequenceRand(values ...float64) Rand {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &sequenceRand{values: values}
}

func (s *sequenceRand) Float64() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}
