package generator

import (
	"math/rand"
	"time"
)

// for deterministic testing
type Clock interface {
	Now() time.Time
}

// for deterministic values; *rand.Rand satisfies it
type Rand interface {
	Intn(n int) int
	Float64() float64
	Uint64() uint64
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// NewRand returns a seeded source. A zero seed is replaced by the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
