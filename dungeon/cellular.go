package dungeon

import (
	"math/rand"

	"coldiron/server/geometry"
)

// Cell values emitted by a CellSource
const (
	Closed = 0
	Open   = 1
)

// CellSource fills a width x height grid with Open and Closed cells
type CellSource interface {
	Cells(width, height int, rng *rand.Rand) *geometry.Grid[int]
}

// CellSourceFunc adapts a function to CellSource
type CellSourceFunc func(width, height int, rng *rand.Rand) *geometry.Grid[int]

func (f CellSourceFunc) Cells(width, height int, rng *rand.Rand) *geometry.Grid[int] {
	return f(width, height, rng)
}

// Cellular is a cave generator: random fill followed by smoothing passes of a
// born/survive rule over the 8 surrounding cells. Cells beyond the edge count
// as closed.
type Cellular struct {
	OpenProbability float64
	// Iterations is the total number of smoothing passes. The last pass is the
	// one whose values are emitted.
	Iterations int
	Born       []int
	Survive    []int
}

// DefaultCellular returns the cave settings used for every level
func DefaultCellular() Cellular {
	return Cellular{
		OpenProbability: 0.5,
		Iterations:      3,
		Born:            []int{5, 6, 7, 8},
		Survive:         []int{4, 5, 6, 7, 8},
	}
}

// Cells implements CellSource
func (c Cellular) Cells(width, height int, rng *rand.Rand) *geometry.Grid[int] {
	cells := geometry.NewGrid[int](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if rng.Float64() < c.OpenProbability {
				cells.SetValue(x, y, Open)
			}
		}
	}

	born := ruleSet(c.Born)
	survive := ruleSet(c.Survive)
	for i := 0; i < c.Iterations; i++ {
		cells = smooth(cells, born, survive)
	}
	return cells
}

func ruleSet(counts []int) [9]bool {
	var set [9]bool
	for _, n := range counts {
		if n >= 0 && n < len(set) {
			set[n] = true
		}
	}
	return set
}

func smooth(cells *geometry.Grid[int], born, survive [9]bool) *geometry.Grid[int] {
	next := geometry.NewGrid[int](cells.Width(), cells.Height())
	for y := 0; y < cells.Height(); y++ {
		for x := 0; x < cells.Width(); x++ {
			n := 0
			for _, p := range geometry.InRange(geometry.Point{X: x, Y: y}, 1, cells) {
				if cells.Value(p.X, p.Y) == Open {
					n++
				}
			}
			alive := cells.Value(x, y) == Open
			if (alive && survive[n]) || (!alive && born[n]) {
				next.SetValue(x, y, Open)
			}
		}
	}
	return next
}
