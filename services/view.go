package services

import (
	"fmt"

	"coldiron/server/models"
)

const (
	DefaultViewWidth  = 57
	DefaultViewHeight = 17
)

// Viewport is the window of the active level shown to the player, centred on
// a point
type Viewport struct {
	width  int
	height int
}

// NewViewport creates a new viewport. Non-positive sizes use the defaults.
func NewViewport(width, height int) Viewport {
	if width <= 0 {
		width = DefaultViewWidth
	}
	if height <= 0 {
		height = DefaultViewHeight
	}
	return Viewport{width: width, height: height}
}

func (vp Viewport) Width() int {
	return vp.width
}

func (vp Viewport) Height() int {
	return vp.height
}

// origin returns the world coordinates of the top-left cell when the view is
// centred on (x, y)
func (vp Viewport) origin(x, y int) (int, int) {
	return x - vp.width/2, y - vp.height/2
}

// Frame renders the world around the player. It must be called between turns.
func (vp Viewport) Frame(w *World) models.Frame {
	player := w.Player()
	z := w.Depth()
	ox, oy := vp.origin(player.X(), player.Y())

	frame := models.Frame{
		Title:    fmt.Sprintf("Floor %d", z+1),
		Depth:    z,
		OriginX:  ox,
		OriginY:  oy,
		Width:    vp.width,
		Height:   vp.height,
		Cells:    make([][]models.Cell, vp.height),
		Entities: make([]models.EntityView, 0),
		Messages: player.Messages(),
		Status: models.Status{
			HP:    player.HP(),
			MaxHP: player.MaxHP(),
			Kills: player.Kills(),
			Turns: w.Engine().Turns(),
		},
		GameOver: w.GameOver(),
	}
	if portrait, ok := player.Prop("portrait"); ok {
		if lines, ok := portrait.([]string); ok {
			frame.Status.Portrait = lines
		}
	}

	for row := 0; row < vp.height; row++ {
		cells := make([]models.Cell, vp.width)
		for col := 0; col < vp.width; col++ {
			cells[col] = models.CellOf(w.Tile(ox+col, oy+row, z).Glyph)
		}
		frame.Cells[row] = cells
	}

	for _, e := range w.EntitiesAt(z) {
		col, row := e.X()-ox, e.Y()-oy
		if col < 0 || row < 0 || col >= vp.width || row >= vp.height {
			continue
		}
		frame.Cells[row][col] = models.CellOf(e.Glyph)
		frame.Entities = append(frame.Entities, e.View())
	}
	return frame
}
