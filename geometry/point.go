package geometry

import (
	"math"
	"math/rand"
)

// Point is a cell coordinate on a single level
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Bounds is anything that can tell whether a coordinate lies inside it
type Bounds interface {
	Contains(x, y int) bool
}

// InRange returns the square neighbourhood of edge 2*radius+1 around center,
// excluding center itself and any cell outside bounds. Points are ordered
// column by column (x outer, y inner).
func InRange(center Point, radius int, bounds Bounds) []Point {
	if radius <= 0 {
		return nil
	}
	points := make([]Point, 0, (2*radius+1)*(2*radius+1)-1)
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			p := Point{X: center.X + dx, Y: center.Y + dy}
			if bounds != nil && !bounds.Contains(p.X, p.Y) {
				continue
			}
			points = append(points, p)
		}
	}
	return points
}

// Shuffle permutes points in place (Fisher-Yates)
func Shuffle(points []Point, rng *rand.Rand) {
	rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})
}

// Distance is the straight-line distance between two cells
func Distance(startX, startY, endX, endY int) float64 {
	switch {
	case startX == endX:
		return math.Abs(float64(endY - startY))
	case startY == endY:
		return math.Abs(float64(endX - startX))
	default:
		return math.Hypot(float64(startX-endX), float64(startY-endY))
	}
}
