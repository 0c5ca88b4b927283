package adventure

import (
	"math/rand/v2"
	"sync"
)

// pcgIncrement is the fixed second PCG word; the encoded seed supplies the first.
const pcgIncrement = 0x9e3779b97f4a7c15

// Random is a deterministic generator seeded from a GameSeed. Two Randoms built
// from seeds with equal encodings produce identical sequences.
//
// Random satisfies dice.Source and is safe for concurrent use.
type Random struct {
	mu   sync.Mutex
	seed GameSeed
	rng  *rand.Rand
}

// NewRandom returns a Random seeded with seed.Uint64().
func NewRandom(seed GameSeed) *Random {
	n := seed.Uint64()
	return &Random{
		seed: seed,
		rng:  rand.New(rand.NewPCG(n, pcgIncrement)),
	}
}

// Seed returns the GameSeed this generator was built from.
func (r *Random) Seed() GameSeed {
	return r.seed
}

// Intn returns a value in [0, n).
//
// Precondition: n > 0.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		panic("adventure: Intn called with n <= 0")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Float64 returns a value in [0.0, 1.0).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}
