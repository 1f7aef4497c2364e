package variants

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the only non-determinism in variant generation.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns a source backed by the process-wide generator.
func DefaultRandom() RandomSource {
	return globalRandom{}
}

type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// NewSeededRandom returns a replayable source, safe for concurrent use.
func NewSeededRandom(seed uint64) RandomSource {
	return &lockedRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
