package dungeon

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldiron/server/geometry"
	"coldiron/server/models"
)

const stubSize = 40

// blocks returns a stubSize x stubSize map with n separated 8x8 open blocks
// laid out along the top rows
func blocks(n int) *geometry.Grid[int] {
	g := geometry.NewGrid[int](stubSize, stubSize)
	for i := 0; i < n; i++ {
		x0 := 1 + (i%4)*10
		y0 := 1 + (i/4)*10
		for x := x0; x < x0+8; x++ {
			for y := y0; y < y0+8; y++ {
				g.SetValue(x, y, Open)
			}
		}
	}
	return g
}

// sequence returns a CellSource replaying layouts, repeating the last one
func sequence(layouts ...*geometry.Grid[int]) (CellSource, *int) {
	calls := 0
	return CellSourceFunc(func(width, height int, rng *rand.Rand) *geometry.Grid[int] {
		i := calls
		if i >= len(layouts) {
			i = len(layouts) - 1
		}
		calls++
		return layouts[i].Clone()
	}), &calls
}

func stubConfig(levels int, source CellSource) Config {
	return Config{Width: stubSize, Height: stubSize, Levels: levels, Source: source}
}

func TestGenerateRetriesUntilRegionCountAccepted(t *testing.T) {
	source, calls := sequence(blocks(1), blocks(6), blocks(4))

	res, err := Generate(context.Background(), stubConfig(1, source), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 3, *calls)
	assert.Equal(t, []int{3}, res.Attempts)
	require.Len(t, res.Regions, 1)
	assert.Len(t, res.Regions[0], 4)
}

func TestGenerateFailsAfterMaxAttempts(t *testing.T) {
	source, calls := sequence(blocks(2))
	cfg := stubConfig(1, source)
	cfg.MaxAttempts = 5

	_, err := Generate(context.Background(), cfg, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.Equal(t, 5, *calls)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	source, _ := sequence(blocks(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, stubConfig(1, source), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateConnectsLevelsWithStairs(t *testing.T) {
	source, _ := sequence(blocks(3))

	res, err := Generate(context.Background(), stubConfig(3, source), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, res.Stages, 3)

	for z := 1; z < 3; z++ {
		upper, lower := res.Stages[z-1], res.Stages[z]
		linked := 0
		for y := 0; y < stubSize; y++ {
			for x := 0; x < stubSize; x++ {
				if upper.Value(x, y).Kind == models.TileStairsDown && lower.Value(x, y).Kind == models.TileStairsUp {
					linked++
				}
			}
		}
		assert.Positive(t, linked, "level %d not linked to level %d", z, z-1)
	}

	// identical layouts overlap region for region: one stairway each
	assert.Len(t, res.Stairs, 6)
	for _, s := range res.Stairs {
		assert.Equal(t, models.TileStairsDown, res.Stages[s.Upper].Value(s.X, s.Y).Kind)
		assert.Equal(t, models.TileStairsUp, res.Stages[s.Upper+1].Value(s.X, s.Y).Kind)
	}
}

func TestGenerateRejectsUnconnectedLevel(t *testing.T) {
	shifted := geometry.NewGrid[int](stubSize, stubSize)
	// three blocks on the bottom rows, never overlapping blocks(3)
	for i := 0; i < 3; i++ {
		x0 := 1 + i*10
		for x := x0; x < x0+8; x++ {
			for y := 25; y < 33; y++ {
				shifted.SetValue(x, y, Open)
			}
		}
	}
	source, calls := sequence(blocks(3), shifted, shifted, blocks(3))

	res, err := Generate(context.Background(), stubConfig(2, source), rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, []int{1, 3}, res.Attempts)
	assert.NotEmpty(t, res.Stairs)
}

func TestGenerateStagesAreFloorOrWall(t *testing.T) {
	source, _ := sequence(blocks(5))
	res, err := Generate(context.Background(), stubConfig(1, source), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	floors := 0
	res.Stages[0].Each(func(x, y int, tile models.Tile) {
		assert.Contains(t, []models.TileKind{models.TileFloor, models.TileWall}, tile.Kind)
		if tile.IsFloor() {
			floors++
		}
	})
	assert.Equal(t, 5*64, floors)
}

func TestGenerateCellularEndToEnd(t *testing.T) {
	cfg := Config{Width: 40, Height: 40, Levels: 1}
	res, err := Generate(context.Background(), cfg, rand.New(rand.NewSource(20190101)))
	require.NoError(t, err)
	require.Len(t, res.Stages, 1)

	stage := res.Stages[0]
	assert.Equal(t, 40, stage.Width())
	assert.Equal(t, 40, stage.Height())
	stage.Each(func(x, y int, tile models.Tile) {
		assert.True(t, tile.Kind == models.TileFloor || tile.Kind == models.TileWall, "cell (%d,%d) is %s", x, y, tile.Kind)
	})

	regions := res.Regions[0]
	assert.GreaterOrEqual(t, len(regions), DefaultMinRegions)
	assert.LessOrEqual(t, len(regions), DefaultMaxRegions)
	largest := 0
	for _, r := range regions {
		largest = max(largest, r.Size())
	}
	assert.GreaterOrEqual(t, largest, DefaultMinRegionSize)
}

func TestCellularIsDeterministic(t *testing.T) {
	c := DefaultCellular()
	a := c.Cells(30, 20, rand.New(rand.NewSource(9)))
	b := c.Cells(30, 20, rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)

	a.Each(func(x, y, v int) {
		assert.Contains(t, []int{Open, Closed}, v)
	})
}

func TestCellularSmoothingRule(t *testing.T) {
	// A lone open cell dies; a closed cell with five open neighbours is born.
	lone := gridFrom(
		"###",
		"#.#",
		"###",
	)
	next := smooth(lone, ruleSet([]int{5, 6, 7, 8}), ruleSet([]int{4, 5, 6, 7, 8}))
	assert.Equal(t, Closed, next.Value(1, 1))

	crowd := gridFrom(
		"...",
		".##",
		".##",
	)
	next = smooth(crowd, ruleSet([]int{5, 6, 7, 8}), ruleSet([]int{4, 5, 6, 7, 8}))
	assert.Equal(t, Open, next.Value(1, 1))
}
