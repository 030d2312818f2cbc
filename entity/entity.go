package entity

import (
	"errors"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"coldiron/server/geometry"
	"coldiron/server/models"
)

// ErrNoWorld is returned when an entity that was never added to a world
// tries to reach it
var ErrNoWorld = errors.New("entity is not in a world")

// World is the part of the simulation an entity acts on
type World interface {
	Depth() int
	RNG() *rand.Rand
	Contains(x, y int) bool
	Tile(x, y, z int) models.Tile
	EntityAt(x, y, z int) (*Entity, bool)
	AddEntity(e *Entity, z int) error
	RemoveEntity(e *Entity)
	Destroy(x, y, z int)
	FreeFloorInRange(center geometry.Point, radius, z int) []geometry.Point
	SendMessage(target *Entity, message string)
	SendMessageInRange(center geometry.Point, radius, z int, message string)
	UseTile(e *Entity, x, y int) bool
	Lock()
	Unlock() error
}

// Template describes how to build an entity
type Template struct {
	Name string
	models.Glyph

	MaxHP    int
	HP       int
	Defense  int
	Strength int

	// Attributes are composed in order; earlier attributes win conflicts.
	Attributes []*Attribute
}

// Entity is a positioned thing in the world whose behaviour comes from its
// composed attributes
type Entity struct {
	models.Glyph

	name     string
	x, y, z  int
	placed   bool
	world    World
	template *Template

	attributes mapset.Set[string]
	groups     mapset.Set[string]
	props      map[string]any
	behavior   Behavior

	// State seeded by attribute Init hooks
	hp, maxHP      int
	defense        int
	strength       int
	kills          int
	killedBy       string
	messages       []string
	spawnRemaining int
}

// New composes an entity from a template. For every attribute, in order, its
// props and behaviour are copied unless already present, its name and group
// are recorded and its Init hook runs.
func New(t *Template) *Entity {
	e := &Entity{
		Glyph:      t.Glyph,
		name:       t.Name,
		template:   t,
		attributes: mapset.New[string](),
		groups:     mapset.New[string](),
		props:      make(map[string]any),
	}
	if e.Character == 0 {
		e.Character = ' '
	}
	if e.FgColor == "" {
		e.FgColor = "white"
	}
	if e.BgColor == "" {
		e.BgColor = "black"
	}

	for _, a := range t.Attributes {
		for key, value := range a.Props {
			if key == reservedName || key == reservedInit {
				continue
			}
			if _, taken := e.props[key]; taken {
				continue
			}
			e.props[key] = value
		}
		e.behavior.merge(a.Behavior)
		e.attributes.Put(a.Name)
		if a.GroupName != "" {
			e.groups.Put(a.GroupName)
		}
		if a.Init != nil {
			a.Init(e, t)
		}
	}
	return e
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) X() int { return e.x }
func (e *Entity) Y() int { return e.y }
func (e *Entity) Z() int { return e.z }

// Point is the entity's position on its level
func (e *Entity) Point() geometry.Point {
	return geometry.Point{X: e.x, Y: e.y}
}

func (e *Entity) Position() models.Position {
	return models.Position{X: e.x, Y: e.y, Z: e.z}
}

// SetPosition moves the entity without any checks
func (e *Entity) SetPosition(x, y, z int) {
	e.x, e.y, e.z = x, y, z
	e.placed = true
}

// Placed reports whether the entity has been given a level
func (e *Entity) Placed() bool {
	return e.placed
}

func (e *Entity) World() World {
	return e.world
}

// BindWorld attaches the entity to w
func (e *Entity) BindWorld(w World) {
	e.world = w
}

// Template returns the template the entity was built from
func (e *Entity) Template() *Template {
	return e.template
}

// HasAttribute reports whether an attribute with this name, or any attribute
// in this capability group, was composed onto the entity
func (e *Entity) HasAttribute(name string) bool {
	return e.attributes.Has(name) || e.groups.Has(name)
}

// Has reports whether a was composed onto the entity, by name only
func (e *Entity) Has(a *Attribute) bool {
	return a != nil && e.attributes.Has(a.Name)
}

// Prop returns a composed attribute property
func (e *Entity) Prop(key string) (any, bool) {
	v, ok := e.props[key]
	return v, ok
}

// Act runs the entity's turn. Entities off the active level do nothing.
func (e *Entity) Act() {
	if e.world == nil || e.z != e.world.Depth() {
		return
	}
	if e.behavior.Act != nil {
		e.behavior.Act(e)
	}
}

// TryMove attempts to move to (x, y) on the entity's level
func (e *Entity) TryMove(x, y int) MoveResult {
	if e.world == nil || e.behavior.TryMove == nil {
		return MoveBlocked
	}
	return e.behavior.TryMove(e, x, y)
}

// Attack strikes target if the entity can attack
func (e *Entity) Attack(target *Entity) {
	if e.world == nil || e.behavior.Attack == nil || target == nil {
		return
	}
	e.behavior.Attack(e, target)
}

// TakeDamage applies damage if the entity can be damaged
func (e *Entity) TakeDamage(attacker *Entity, damage int) {
	if e.world == nil || e.behavior.TakeDamage == nil {
		return
	}
	e.behavior.TakeDamage(e, attacker, damage)
}

// ReceiveMessage hands a message to the entity if it can take messages
func (e *Entity) ReceiveMessage(message string) {
	if e.behavior.ReceiveMessage == nil {
		return
	}
	e.behavior.ReceiveMessage(e, message)
}

// Messages returns a copy of the entity's message buffer
func (e *Entity) Messages() []string {
	out := make([]string, len(e.messages))
	copy(out, e.messages)
	return out
}

func (e *Entity) ClearMessages() {
	e.messages = nil
}

func (e *Entity) HP() int {
	return e.hp
}

func (e *Entity) MaxHP() int {
	return e.maxHP
}

func (e *Entity) Defense() int {
	return e.defense
}

func (e *Entity) AttackPower() int {
	return e.strength
}

// Kills counts the entities this one has destroyed
func (e *Entity) Kills() int {
	return e.kills
}

// KilledBy names whatever destroyed the entity, empty while it lives
func (e *Entity) KilledBy() string {
	return e.killedBy
}

// AdjustHP adds delta to the entity's hit points
func (e *Entity) AdjustHP(delta int) {
	e.hp += delta
}

// Continue hands control back to the engine after the entity's turn was
// resolved by an outside event
func (e *Entity) Continue() error {
	if e.world == nil {
		return ErrNoWorld
	}
	return e.world.Unlock()
}

// View returns the render state of the entity
func (e *Entity) View() models.EntityView {
	return models.EntityView{
		Name:     e.name,
		Position: e.Position(),
		Char:     string(e.Character),
		Fg:       e.FgColor,
		Bg:       e.BgColor,
		HP:       e.hp,
		MaxHP:    e.maxHP,
	}
}
