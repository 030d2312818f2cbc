package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"time"
)

// DefaultSeed is used when a world is created without a seed
const DefaultSeed = "coldiron"

// RNGFactory hands a world subsystem its random source. The same seed and
// subsystem always give the same sequence.
type RNGFactory func(seed, subsystem string) *rand.Rand

// SeededRNG is the default RNGFactory. Each subsystem draws from its own
// stream, so extra draws in one leave the others untouched.
func SeededRNG(seed, subsystem string) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s%s", len(seed), seed, subsystem)
	return rand.New(rand.NewSource(int64(h.Sum64() >> 1)))
}

// NewSeed returns a fresh root seed for a new game
func NewSeed() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
