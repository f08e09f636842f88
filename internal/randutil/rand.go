// Package randutil centralises how seeded random sources are built so that
// training runs, worker streams and tests are reproducible.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// NewSource derives the two PCG seeds from a single int64. The PCG source
// implements encoding.BinaryMarshaler, which lets checkpoints capture the
// exact stream position.
func NewSource(seed int64) *rand.PCG {
	u := uint64(seed)
	return rand.NewPCG(mix(u), mix(u+goldenRatio64))
}

// Derive returns an independent seed for stream n of a run seeded with seed.
// Parallel workers use it so that their streams never overlap.
func Derive(seed int64, n int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(n)+goldenRatio64)))
}

// Seed returns seed unless it is zero, in which case a time-based seed is
// chosen.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
