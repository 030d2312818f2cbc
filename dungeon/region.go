package dungeon

import (
	"github.com/zyedidia/generic/mapset"

	"coldiron/server/geometry"
	"coldiron/server/models"
)

// Region is a connected set of open cells on one level
type Region struct {
	ID int

	points  []geometry.Point
	members mapset.Set[geometry.Point]

	// Bounding box
	West, East   int
	North, South int
}

func newRegion(id int) *Region {
	return &Region{
		ID:      id,
		members: mapset.New[geometry.Point](),
	}
}

func (r *Region) add(p geometry.Point) {
	if r.members.Has(p) {
		return
	}
	if len(r.points) == 0 {
		r.West, r.East = p.X, p.X
		r.North, r.South = p.Y, p.Y
	} else {
		r.West = min(r.West, p.X)
		r.East = max(r.East, p.X)
		r.North = min(r.North, p.Y)
		r.South = max(r.South, p.Y)
	}
	r.members.Put(p)
	r.points = append(r.points, p)
}

// Size is the number of cells in the region
func (r *Region) Size() int {
	return len(r.points)
}

// Contains reports whether p belongs to the region
func (r *Region) Contains(p geometry.Point) bool {
	return r.members.Has(p)
}

// Points returns the region's cells in discovery order
func (r *Region) Points() []geometry.Point {
	out := make([]geometry.Point, len(r.points))
	copy(out, r.points)
	return out
}

// Center is the rounded midpoint of the bounding box
func (r *Region) Center() geometry.Point {
	return geometry.Point{
		X: (r.West + r.East + 1) / 2,
		Y: (r.North + r.South + 1) / 2,
	}
}

// FindRegions partitions the Open cells of regionMap into regions whose cells
// are connected through their 8 neighbours. Cells are scanned column by column
// and regions are numbered in discovery order.
func FindRegions(regionMap *geometry.Grid[int]) []*Region {
	var regions []*Region
	visited := mapset.New[geometry.Point]()

	for x := 0; x < regionMap.Width(); x++ {
		for y := 0; y < regionMap.Height(); y++ {
			start := geometry.Point{X: x, Y: y}
			if regionMap.Value(x, y) == Closed || visited.Has(start) {
				continue
			}
			region := newRegion(len(regions))
			stack := []geometry.Point{start}
			visited.Put(start)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				region.add(p)
				for _, n := range geometry.InRange(p, 1, regionMap) {
					if regionMap.Value(n.X, n.Y) == Closed || visited.Has(n) {
						continue
					}
					visited.Put(n)
					stack = append(stack, n)
				}
			}
			regions = append(regions, region)
		}
	}
	return regions
}

// filterRegions walls off every region smaller than minSize, both in the stage
// and in the region map, and renumbers the survivors so that the ids of
// discarded regions are reused.
func filterRegions(regions []*Region, minSize int, stage *models.Stage, regionMap *geometry.Grid[int], wall models.Tile) []*Region {
	kept := regions[:0:0]
	for _, region := range regions {
		if region.Size() < minSize {
			for _, p := range region.points {
				stage.SetValue(p.X, p.Y, wall)
				regionMap.SetValue(p.X, p.Y, Closed)
			}
			continue
		}
		region.ID = len(kept)
		kept = append(kept, region)
	}
	return kept
}

// regionAt returns the region containing p, if any
func regionAt(regions []*Region, p geometry.Point) (*Region, bool) {
	for _, region := range regions {
		if region.Contains(p) {
			return region, true
		}
	}
	return nil, false
}
