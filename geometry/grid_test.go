package geometry

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSetThenGet(t *testing.T) {
	g := NewGrid[int](7, 5)
	for x := 0; x < 7; x++ {
		for y := 0; y < 5; y++ {
			g.SetValue(x, y, x*100+y)
		}
	}
	for x := 0; x < 7; x++ {
		for y := 0; y < 5; y++ {
			assert.Equal(t, x*100+y, g.Value(x, y))
		}
	}
}

func TestGridContains(t *testing.T) {
	g := NewGrid[string](4, 3)
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{3, 2, true},
		{-1, 0, false},
		{0, -1, false},
		{4, 0, false},
		{0, 3, false},
		{4, 3, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, g.Contains(tc.x, tc.y), "(%d,%d)", tc.x, tc.y)
	}
}

func TestGridOutOfRangeIsZeroAndIgnored(t *testing.T) {
	g := NewGrid[int](2, 2)
	g.SetValue(5, 5, 9)
	v, ok := g.Lookup(5, 5)
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.Zero(t, g.Value(-1, 0))
}

func TestGridRowMajorLayout(t *testing.T) {
	g := NewGridFrom(3, 2, []int{0, 1, 2, 3, 4, 5})
	assert.Equal(t, 1, g.Value(1, 0))
	assert.Equal(t, 3, g.Value(0, 1))
	assert.Equal(t, 5, g.Value(2, 1))

	clone := g.Clone()
	clone.SetValue(0, 0, 42)
	assert.Equal(t, 0, g.Value(0, 0))
}

func TestInRangeExcludesCenterAndClips(t *testing.T) {
	g := NewGrid[int](10, 10)

	inner := InRange(Point{X: 5, Y: 5}, 1, g)
	assert.Len(t, inner, 8)
	assert.NotContains(t, inner, Point{X: 5, Y: 5})

	corner := InRange(Point{X: 0, Y: 0}, 1, g)
	assert.ElementsMatch(t, []Point{{1, 0}, {0, 1}, {1, 1}}, corner)

	wide := InRange(Point{X: 5, Y: 5}, 2, g)
	assert.Len(t, wide, 24)
}

func TestShuffleIsPermutation(t *testing.T) {
	points := InRange(Point{X: 3, Y: 3}, 2, nil)
	shuffled := append([]Point(nil), points...)
	Shuffle(shuffled, rand.New(rand.NewSource(7)))

	key := func(ps []Point) []int {
		out := make([]int, len(ps))
		for i, p := range ps {
			out[i] = p.X*100 + p.Y
		}
		sort.Ints(out)
		return out
	}
	require.Equal(t, key(points), key(shuffled))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 3.0, Distance(1, 1, 1, 4))
	assert.Equal(t, 2.0, Distance(5, 0, 3, 0))
	assert.InDelta(t, 5.0, Distance(0, 0, 3, 4), 1e-9)
}
