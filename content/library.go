package content

import (
	"fmt"

	"coldiron/server/entity"
	"coldiron/server/models"
)

// SpawnRule is a resolved spawn table entry
type SpawnRule struct {
	Template *entity.Template
	PerLevel int
}

// Library is the game data with every name resolved, ready for world setup
type Library struct {
	Palette   models.Palette
	Player    *entity.Template
	Templates map[string]*entity.Template
	Spawns    []SpawnRule
}

// Compile resolves tile kinds, templates and spawn entries. A nil registry
// means entity.StandardAttributes().
func (t *Tables) Compile(reg entity.Registry) (*Library, error) {
	if reg == nil {
		reg = entity.StandardAttributes()
	}

	palette, err := t.Palette()
	if err != nil {
		return nil, err
	}

	lib := &Library{
		Palette:   palette,
		Templates: make(map[string]*entity.Template, len(t.Templates)),
	}
	for name := range t.Templates {
		tmpl, err := t.Template(name, reg)
		if err != nil {
			return nil, err
		}
		lib.Templates[name] = tmpl
	}

	player, ok := lib.Templates[t.Player]
	if !ok {
		return nil, fmt.Errorf("player: %w: %q", ErrUnknownTemplate, t.Player)
	}
	lib.Player = player

	for _, s := range t.Spawns {
		tmpl, ok := lib.Templates[s.Template]
		if !ok {
			return nil, fmt.Errorf("spawn: %w: %q", ErrUnknownTemplate, s.Template)
		}
		lib.Spawns = append(lib.Spawns, SpawnRule{Template: tmpl, PerLevel: s.PerLevel})
	}
	return lib, nil
}

// MustDefault compiles the built-in tables with the standard attributes
func MustDefault() *Library {
	lib, err := Default().Compile(nil)
	if err != nil {
		panic(err)
	}
	return lib
}

// Load compiles the tables in path, or the built-in tables when path is empty
func Load(path string) (*Library, error) {
	tables := Default()
	if path != "" {
		var err error
		if tables, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	lib, err := tables.Compile(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile content: %w", err)
	}
	return lib, nil
}
