package models

import (
	"errors"
	"fmt"
)

// GameMap is the serialisable layout of a generated dungeon
type GameMap struct {
	Name   string    `json:"name"`
	Seed   string    `json:"seed"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Depth  int       `json:"depth"`  // Number of levels
	Levels [][][]int `json:"levels"` // [z][y][x] tile kinds
}

// ErrMalformedMap is returned when a stored layout does not match its dimensions
var ErrMalformedMap = errors.New("malformed game map")

// GameMapFromStages captures the tile kinds of every stage
func GameMapFromStages(name, seed string, stages []*Stage) *GameMap {
	gm := &GameMap{Name: name, Seed: seed, Depth: len(stages)}
	if len(stages) == 0 {
		return gm
	}
	gm.Width = stages[0].Width()
	gm.Height = stages[0].Height()
	gm.Levels = make([][][]int, len(stages))
	for z, stage := range stages {
		rows := make([][]int, stage.Height())
		for y := range rows {
			rows[y] = make([]int, stage.Width())
			for x := range rows[y] {
				rows[y][x] = int(stage.Value(x, y).Kind)
			}
		}
		gm.Levels[z] = rows
	}
	return gm
}

// Stages rebuilds the stages using palette for tile appearance
func (gm *GameMap) Stages(palette Palette) ([]*Stage, error) {
	if gm.Width <= 0 || gm.Height <= 0 || gm.Depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrMalformedMap, gm.Width, gm.Height, gm.Depth)
	}
	if len(gm.Levels) != gm.Depth {
		return nil, fmt.Errorf("%w: %d levels, depth %d", ErrMalformedMap, len(gm.Levels), gm.Depth)
	}
	stages := make([]*Stage, gm.Depth)
	for z, rows := range gm.Levels {
		if len(rows) != gm.Height {
			return nil, fmt.Errorf("%w: level %d has %d rows", ErrMalformedMap, z, len(rows))
		}
		stage := NewStage(gm.Width, gm.Height)
		for y, row := range rows {
			if len(row) != gm.Width {
				return nil, fmt.Errorf("%w: level %d row %d has %d cells", ErrMalformedMap, z, y, len(row))
			}
			for x, kind := range row {
				stage.SetValue(x, y, palette.Tile(TileKind(kind)))
			}
		}
		stages[z] = stage
	}
	return stages, nil
}
