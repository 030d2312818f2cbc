package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileDefaults(t *testing.T) {
	floor := NewTile(TileFloor, TileConfig{})
	assert.True(t, floor.Passable)
	assert.False(t, floor.Destructible)
	assert.Equal(t, '.', floor.Character)
	assert.True(t, floor.IsFloor())

	wall := NewTile(TileWall, TileConfig{})
	assert.False(t, wall.Passable)
	assert.True(t, wall.Destructible)
	assert.Equal(t, '#', wall.Character)

	null := NewTile(TileNull, TileConfig{})
	assert.False(t, null.Passable)
	assert.Equal(t, "red", null.BgColor)

	up := NewTile(TileStairsUp, TileConfig{})
	down := NewTile(TileStairsDown, TileConfig{})
	assert.Equal(t, UseNavUp, up.Use)
	assert.Equal(t, UseNavDown, down.Use)
	assert.True(t, up.Passable && down.Passable)
	assert.False(t, up.IsFloor())
}

func TestTileConfigOverrides(t *testing.T) {
	no := false
	wall := NewTile(TileWall, TileConfig{Character: "%", FgColor: "grey", Destructible: &no})
	assert.Equal(t, '%', wall.Character)
	assert.Equal(t, "grey", wall.FgColor)
	assert.Equal(t, "black", wall.BgColor)
	assert.False(t, wall.Destructible)

	palette := Palette{TileFloor: {BgColor: "rgb(10,10,10)"}}
	assert.Equal(t, "rgb(10,10,10)", palette.Tile(TileFloor).BgColor)
	assert.Equal(t, "black", palette.Tile(TileWall).BgColor)
}

func TestParseTileKind(t *testing.T) {
	for _, kind := range []TileKind{TileNull, TileFloor, TileWall, TileStairsUp, TileStairsDown} {
		parsed, ok := ParseTileKind(kind.String())
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}
	_, ok := ParseTileKind("lava")
	assert.False(t, ok)
}

func TestGameMapRestoresStages(t *testing.T) {
	palette := Palette{}
	stage := NewStage(3, 2)
	stage.Fill(palette.Tile(TileWall))
	stage.SetValue(1, 0, palette.Tile(TileFloor))
	stage.SetValue(2, 1, palette.Tile(TileStairsDown))

	gm := GameMapFromStages("crypt", "seed", []*Stage{stage})
	assert.Equal(t, 1, gm.Depth)
	assert.Equal(t, []int{int(TileWall), int(TileWall), int(TileStairsDown)}, gm.Levels[0][1])

	restored, err := gm.Stages(palette)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, stage.Value(1, 0), restored[0].Value(1, 0))
	assert.Equal(t, UseNavDown, restored[0].Value(2, 1).Use)
}

func TestGameMapRejectsMalformedLevels(t *testing.T) {
	gm := &GameMap{Width: 2, Height: 1, Depth: 1, Levels: [][][]int{{{1}}}}
	_, err := gm.Stages(Palette{})
	assert.True(t, errors.Is(err, ErrMalformedMap))
}

func TestGameMapRejectsEmptyDimensions(t *testing.T) {
	for _, gm := range []*GameMap{
		{Width: 0, Height: 0, Depth: 1, Levels: [][][]int{{}}},
		{Width: -1, Height: 1, Depth: 1, Levels: [][][]int{{{}}}},
		{Width: 1, Height: 1, Depth: 0},
	} {
		_, err := gm.Stages(Palette{})
		assert.ErrorIs(t, err, ErrMalformedMap, "%dx%dx%d", gm.Width, gm.Height, gm.Depth)
	}
}
