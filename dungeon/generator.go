package dungeon

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"coldiron/server/geometry"
	"coldiron/server/models"
)

const (
	DefaultWidth         = 70
	DefaultHeight        = 40
	DefaultLevels        = 2
	DefaultMinRegionSize = 50
	DefaultMinRegions    = 3
	DefaultMaxRegions    = 5
	DefaultMaxAttempts   = 1000
)

// ErrGenerationFailed is returned when a level could not be accepted within
// the configured number of attempts
var ErrGenerationFailed = errors.New("dungeon generation failed")

// Config controls dungeon generation
type Config struct {
	Width, Height int
	Levels        int

	// Regions smaller than MinRegionSize are walled off.
	MinRegionSize int
	// A level is accepted only with MinRegions..MaxRegions surviving regions.
	MinRegions int
	MaxRegions int
	// MaxAttempts caps the retries for a single level.
	MaxAttempts int

	Palette models.Palette
	Source  CellSource // nil = DefaultCellular()
	Logger  *zap.Logger
}

func (cfg Config) normalized() Config {
	n := cfg
	if n.Width <= 0 {
		n.Width = DefaultWidth
	}
	if n.Height <= 0 {
		n.Height = DefaultHeight
	}
	if n.Levels <= 0 {
		n.Levels = DefaultLevels
	}
	if n.MinRegionSize <= 0 {
		n.MinRegionSize = DefaultMinRegionSize
	}
	if n.MinRegions <= 0 {
		n.MinRegions = DefaultMinRegions
	}
	if n.MaxRegions <= 0 {
		n.MaxRegions = DefaultMaxRegions
	}
	if n.MaxRegions < n.MinRegions {
		n.MaxRegions = n.MinRegions
	}
	if n.MaxAttempts <= 0 {
		n.MaxAttempts = DefaultMaxAttempts
	}
	if n.Palette == nil {
		n.Palette = models.Palette{}
	}
	if n.Source == nil {
		n.Source = DefaultCellular()
	}
	if n.Logger == nil {
		n.Logger = zap.NewNop()
	}
	return n
}

// Stairway links a down staircase on level Upper to the up staircase directly
// below it on level Upper+1
type Stairway struct {
	geometry.Point
	Upper int
}

// Result is a generated dungeon
type Result struct {
	Stages   []*models.Stage
	Regions  [][]*Region // Surviving regions per level
	Stairs   []Stairway
	Attempts []int // Attempts spent per level
}

// Generate builds cfg.Levels connected stages. A nil rng is seeded from the clock.
func Generate(ctx context.Context, cfg Config, rng *rand.Rand) (*Result, error) {
	cfg = cfg.normalized()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	res := &Result{
		Stages:   make([]*models.Stage, 0, cfg.Levels),
		Regions:  make([][]*Region, 0, cfg.Levels),
		Attempts: make([]int, 0, cfg.Levels),
	}

	for z := 0; z < cfg.Levels; z++ {
		accepted := false
		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			stage, regions := buildLevel(cfg, rng)
			if n := len(regions); n < cfg.MinRegions || n > cfg.MaxRegions {
				cfg.Logger.Debug("level rejected",
					zap.Int("level", z), zap.Int("attempt", attempt), zap.Int("regions", n))
				continue
			}

			if z > 0 {
				stairs := connect(res.Stages[z-1], stage, res.Regions[z-1], regions, z-1, cfg.Palette, rng)
				if len(stairs) == 0 {
					cfg.Logger.Debug("level not connected",
						zap.Int("level", z), zap.Int("attempt", attempt))
					continue
				}
				res.Stairs = append(res.Stairs, stairs...)
			}

			res.Stages = append(res.Stages, stage)
			res.Regions = append(res.Regions, regions)
			res.Attempts = append(res.Attempts, attempt)
			cfg.Logger.Debug("level accepted",
				zap.Int("level", z), zap.Int("attempt", attempt), zap.Int("regions", len(regions)))
			accepted = true
			break
		}
		if !accepted {
			return nil, fmt.Errorf("%w: level %d rejected %d times", ErrGenerationFailed, z, cfg.MaxAttempts)
		}
	}

	return res, nil
}

// buildLevel produces one candidate stage and its surviving regions
func buildLevel(cfg Config, rng *rand.Rand) (*models.Stage, []*Region) {
	cells := cfg.Source.Cells(cfg.Width, cfg.Height, rng)

	floor := cfg.Palette.Tile(models.TileFloor)
	wall := cfg.Palette.Tile(models.TileWall)
	stage := models.NewStage(cfg.Width, cfg.Height)
	regionMap := geometry.NewGrid[int](cfg.Width, cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			if cells.Value(x, y) == Open {
				stage.SetValue(x, y, floor)
				regionMap.SetValue(x, y, Open)
			} else {
				stage.SetValue(x, y, wall)
			}
		}
	}

	regions := filterRegions(FindRegions(regionMap), cfg.MinRegionSize, stage, regionMap, wall)
	return stage, regions
}

// connect places one stairway per region of the lower level that overlaps a
// region of the upper level. Only plain floor on the upper level is used so
// that earlier up staircases are never overwritten.
func connect(upper, lower *models.Stage, upperRegions, lowerRegions []*Region, upperZ int, palette models.Palette, rng *rand.Rand) []Stairway {
	var stairs []Stairway
	for _, region := range lowerRegions {
		points := region.Points()
		geometry.Shuffle(points, rng)
		for _, p := range points {
			if _, ok := regionAt(upperRegions, p); !ok {
				continue
			}
			if !upper.Value(p.X, p.Y).IsFloor() {
				continue
			}
			upper.SetValue(p.X, p.Y, palette.Tile(models.TileStairsDown))
			lower.SetValue(p.X, p.Y, palette.Tile(models.TileStairsUp))
			stairs = append(stairs, Stairway{Point: p, Upper: upperZ})
			break
		}
	}
	return stairs
}
