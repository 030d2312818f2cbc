package geometry

// Grid is a fixed-size, row-major 2D array addressed by (x, y)
type Grid[T any] struct {
	width  int
	height int
	data   []T
}

// NewGrid creates a width x height grid filled with the zero value of T
func NewGrid[T any](width, height int) *Grid[T] {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Grid[T]{
		width:  width,
		height: height,
		data:   make([]T, width*height),
	}
}

// NewGridFrom wraps existing row-major data. Missing cells are zero-filled and
// extra cells are dropped.
func NewGridFrom[T any](width, height int, data []T) *Grid[T] {
	g := NewGrid[T](width, height)
	copy(g.data, data)
	return g
}

// Width returns the number of columns
func (g *Grid[T]) Width() int {
	return g.width
}

// Height returns the number of rows
func (g *Grid[T]) Height() int {
	return g.height
}

// Contains reports whether (x, y) addresses a cell of the grid
func (g *Grid[T]) Contains(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Value returns the cell at (x, y), or the zero value when out of range
func (g *Grid[T]) Value(x, y int) T {
	v, _ := g.Lookup(x, y)
	return v
}

// Lookup returns the cell at (x, y) and whether it exists
func (g *Grid[T]) Lookup(x, y int) (T, bool) {
	if !g.Contains(x, y) {
		var zero T
		return zero, false
	}
	return g.data[x+g.width*y], true
}

// SetValue stores v at (x, y). Writes outside the grid are ignored.
func (g *Grid[T]) SetValue(x, y int, v T) {
	if !g.Contains(x, y) {
		return
	}
	g.data[x+g.width*y] = v
}

// Fill sets every cell to v
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Each calls fn for every cell in row-major order
func (g *Grid[T]) Each(fn func(x, y int, v T)) {
	for i, v := range g.data {
		fn(i%g.width, i/g.width, v)
	}
}

// Clone returns a copy of the grid with its own backing array
func (g *Grid[T]) Clone() *Grid[T] {
	return NewGridFrom(g.width, g.height, g.data)
}
