package models

// Cell is one drawn map position
type Cell struct {
	Char string `json:"ch"`
	Fg   string `json:"fg"`
	Bg   string `json:"bg"`
}

// CellOf converts a glyph into a cell
func CellOf(g Glyph) Cell {
	return Cell{Char: string(g.Character), Fg: g.FgColor, Bg: g.BgColor}
}

// Status is the player panel
type Status struct {
	HP       int      `json:"hp"`
	MaxHP    int      `json:"max_hp"`
	Kills    int      `json:"kills"`
	Turns    int      `json:"turns"`
	Portrait []string `json:"portrait,omitempty"`
}

// Frame is everything a renderer needs to draw one screen of the game
type Frame struct {
	Title    string       `json:"title"`
	Depth    int          `json:"depth"`
	OriginX  int          `json:"origin_x"`
	OriginY  int          `json:"origin_y"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Cells    [][]Cell     `json:"cells"` // [row][column]
	Entities []EntityView `json:"entities"`
	Messages []string     `json:"messages"`
	Status   Status       `json:"status"`
	GameOver bool         `json:"game_over"`
}
