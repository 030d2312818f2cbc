package models

import "coldiron/server/geometry"

// Glyph is the visual part of anything drawn on a stage
type Glyph struct {
	Character rune   `json:"char"`
	FgColor   string `json:"fg"`
	BgColor   string `json:"bg"`
}

// Tile kinds
type TileKind int

const (
	TileNull TileKind = iota
	TileFloor
	TileWall
	TileStairsUp
	TileStairsDown
)

var tileKindNames = map[TileKind]string{
	TileNull:       "null",
	TileFloor:      "floor",
	TileWall:       "wall",
	TileStairsUp:   "stairsUp",
	TileStairsDown: "stairsDown",
}

func (k TileKind) String() string {
	if name, ok := tileKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseTileKind maps a content-table name back to its kind
func ParseTileKind(name string) (TileKind, bool) {
	for k, n := range tileKindNames {
		if n == name {
			return k, true
		}
	}
	return TileNull, false
}

// TileUse is the action triggered when an entity steps onto a tile
type TileUse string

const (
	UseNone    TileUse = ""
	UseNavUp   TileUse = "navUp"
	UseNavDown TileUse = "navDown"
)

// Tile is an immutable map cell. Tiles are replaced, never mutated.
type Tile struct {
	Glyph
	Kind         TileKind `json:"kind"`
	Passable     bool     `json:"passable"`
	Destructible bool     `json:"destructible"`
	Use          TileUse  `json:"use,omitempty"`
}

// IsFloor reports whether the tile is plain floor
func (t Tile) IsFloor() bool {
	return t.Kind == TileFloor
}

// TileConfig overrides the defaults of a tile kind. Zero fields keep the default.
type TileConfig struct {
	Character    string `json:"character,omitempty"`
	FgColor      string `json:"fgColor,omitempty"`
	BgColor      string `json:"bgColor,omitempty"`
	Passable     *bool  `json:"passable,omitempty"`
	Destructible *bool  `json:"destructible,omitempty"`
}

func defaultTile(kind TileKind) Tile {
	switch kind {
	case TileFloor:
		return Tile{Glyph: Glyph{'.', "goldenrod", "black"}, Kind: kind, Passable: true}
	case TileWall:
		return Tile{Glyph: Glyph{'#', "blue", "black"}, Kind: kind, Destructible: true}
	case TileStairsUp:
		return Tile{Glyph: Glyph{'<', "yellow", "black"}, Kind: kind, Passable: true, Use: UseNavUp}
	case TileStairsDown:
		return Tile{Glyph: Glyph{'>', "orange", "black"}, Kind: kind, Passable: true, Use: UseNavDown}
	default:
		return Tile{Glyph: Glyph{'!', "pink", "red"}, Kind: TileNull}
	}
}

// NewTile builds a tile of the given kind with cfg applied over the kind's defaults
func NewTile(kind TileKind, cfg TileConfig) Tile {
	tile := defaultTile(kind)
	if cfg.Character != "" {
		tile.Character = []rune(cfg.Character)[0]
	}
	if cfg.FgColor != "" {
		tile.FgColor = cfg.FgColor
	}
	if cfg.BgColor != "" {
		tile.BgColor = cfg.BgColor
	}
	if cfg.Passable != nil {
		tile.Passable = *cfg.Passable
	}
	if cfg.Destructible != nil {
		tile.Destructible = *cfg.Destructible
	}
	return tile
}

// Palette holds per-kind overrides for a dungeon's tiles
type Palette map[TileKind]TileConfig

// Tile builds a tile of the given kind from the palette
func (p Palette) Tile(kind TileKind) Tile {
	return NewTile(kind, p[kind])
}

// Stage is one dungeon level
type Stage = geometry.Grid[Tile]

// NewStage creates a stage filled with null tiles
func NewStage(width, height int) *Stage {
	stage := geometry.NewGrid[Tile](width, height)
	stage.Fill(defaultTile(TileNull))
	return stage
}
