package litter

import (
	"math/rand/v2"
	"time"
)

// Random is the source of cosmetic variety (spin, jitter, placement roll).
// *rand.Rand satisfies it; tests pass a seeded one.
type Random interface {
	Float64() float64
}

// NewRandom returns a PCG-backed source. A zero seed is replaced with the clock.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Between draws a float in [lo, hi).
func Between(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween draws an integer in [lo, hi].
func IntBetween(r Random, lo, hi int) int {
	return lo + int(r.Float64()*float64(hi-lo+1))
}
