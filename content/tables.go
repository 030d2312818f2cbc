package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"coldiron/server/entity"
	"coldiron/server/models"
)

var (
	// ErrUnknownTemplate is returned when a name refers to no entity template
	ErrUnknownTemplate = errors.New("unknown entity template")
	// ErrUnknownTile is returned when the tile table names an unknown tile kind
	ErrUnknownTile = errors.New("unknown tile kind")
)

// TemplateDef is the table form of an entity template
type TemplateDef struct {
	Character  string   `json:"character"`
	FgColor    string   `json:"fgColor,omitempty"`
	BgColor    string   `json:"bgColor,omitempty"`
	MaxHP      int      `json:"maxHp,omitempty"`
	HP         int      `json:"hp,omitempty"`
	Defense    int      `json:"defense,omitempty"`
	Strength   int      `json:"strength,omitempty"`
	Attributes []string `json:"attributes"`
}

// Spawn places PerLevel entities of a template on every level
type Spawn struct {
	Template string `json:"template"`
	PerLevel int    `json:"perLevel"`
}

// Tables is the static game data: tile appearance, entity templates and the
// spawn table
type Tables struct {
	Tiles     map[string]models.TileConfig `json:"tiles"`
	Templates map[string]TemplateDef       `json:"templates"`
	Player    string                       `json:"player"`
	Spawns    []Spawn                      `json:"spawns"`
}

// Default returns the built-in game data
func Default() *Tables {
	return &Tables{
		Tiles: map[string]models.TileConfig{
			"floor": {Character: ".", FgColor: "goldenrod", BgColor: "black"},
			"wall":  {Character: "#", FgColor: "blue", BgColor: "black"},
		},
		Templates: map[string]TemplateDef{
			"player": {
				Character: "@",
				FgColor:   "white",
				BgColor:   "black",
				Strength:  6,
				Attributes: []string{
					entity.NameMobile,
					entity.NamePlayerActor,
					entity.NameAttacker,
					entity.NameDestructible,
					entity.NameMessageRecipient,
				},
			},
			"fungus": {
				Character: "F",
				FgColor:   "green",
				MaxHP:     5,
				Attributes: []string{
					entity.NameFungusActor,
					entity.NameDestructible,
				},
			},
		},
		Player: "player",
		Spawns: []Spawn{{Template: "fungus", PerLevel: 25}},
	}
}

// LoadFile reads tables from a JSON file. Sections missing from the file keep
// their defaults.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	var loaded Tables
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}

	tables := Default()
	if loaded.Tiles != nil {
		tables.Tiles = loaded.Tiles
	}
	if loaded.Templates != nil {
		tables.Templates = loaded.Templates
	}
	if loaded.Player != "" {
		tables.Player = loaded.Player
	}
	if loaded.Spawns != nil {
		tables.Spawns = loaded.Spawns
	}
	return tables, nil
}

// Palette converts the tile table
func (t *Tables) Palette() (models.Palette, error) {
	palette := models.Palette{}
	for name, cfg := range t.Tiles {
		kind, ok := models.ParseTileKind(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTile, name)
		}
		palette[kind] = cfg
	}
	return palette, nil
}

// Template builds the named entity template, resolving its attributes in reg
func (t *Tables) Template(name string, reg entity.Registry) (*entity.Template, error) {
	def, ok := t.Templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	attrs, err := reg.Resolve(def.Attributes)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	tmpl := &entity.Template{
		Name: name,
		Glyph: models.Glyph{
			FgColor: def.FgColor,
			BgColor: def.BgColor,
		},
		MaxHP:      def.MaxHP,
		HP:         def.HP,
		Defense:    def.Defense,
		Strength:   def.Strength,
		Attributes: attrs,
	}
	if def.Character != "" {
		tmpl.Character = []rune(def.Character)[0]
	}
	return tmpl, nil
}
