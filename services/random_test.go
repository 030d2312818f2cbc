package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draws(factory RNGFactory, seed, subsystem string) []int {
	rng := factory(seed, subsystem)
	out := make([]int, 8)
	for i := range out {
		out[i] = rng.Intn(1000)
	}
	return out
}

func TestSeededRNGRepeatsPerSubsystem(t *testing.T) {
	assert.Equal(t, draws(SeededRNG, "crypt", "dungeon"), draws(SeededRNG, "crypt", "dungeon"))
	assert.NotEqual(t, draws(SeededRNG, "crypt", "dungeon"), draws(SeededRNG, "crypt", "world"))
	assert.NotEqual(t, draws(SeededRNG, "crypt", "dungeon"), draws(SeededRNG, "cave", "dungeon"))
	// the seed length keeps these two apart
	assert.NotEqual(t, draws(SeededRNG, "ab", "c"), draws(SeededRNG, "a", "bc"))
}
