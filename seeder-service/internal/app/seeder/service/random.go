package service

import (
	"math/rand/v2"
	"time"
)

// NewRand returns a deterministic source for a non-zero seed and a clock
// seeded one otherwise.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
