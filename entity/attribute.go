package entity

import (
	"errors"
	"fmt"
	"sort"
)

// Keys that are never copied from an attribute's props onto an entity
const (
	reservedName = "name"
	reservedInit = "init"
)

// ErrUnknownAttribute is returned when a template names an unregistered attribute
var ErrUnknownAttribute = errors.New("unknown attribute")

// MoveResult describes what a move attempt did
type MoveResult int

const (
	MoveBlocked MoveResult = iota
	MoveMoved
	MoveAttacked
	MoveDug
)

// ConsumesTurn reports whether the attempt used up the mover's turn
func (r MoveResult) ConsumesTurn() bool {
	return r != MoveBlocked
}

func (r MoveResult) String() string {
	switch r {
	case MoveMoved:
		return "moved"
	case MoveAttacked:
		return "attacked"
	case MoveDug:
		return "dug"
	default:
		return "blocked"
	}
}

// Behavior is the table of capability functions an attribute contributes.
// Nil entries are simply not provided.
type Behavior struct {
	Act            func(e *Entity)
	TryMove        func(e *Entity, x, y int) MoveResult
	Attack         func(e *Entity, target *Entity)
	TakeDamage     func(e *Entity, attacker *Entity, damage int)
	ReceiveMessage func(e *Entity, message string)
}

// merge fills the functions b does not have yet from other. The first
// attribute to provide a function keeps it.
func (b *Behavior) merge(other Behavior) {
	if b.Act == nil {
		b.Act = other.Act
	}
	if b.TryMove == nil {
		b.TryMove = other.TryMove
	}
	if b.Attack == nil {
		b.Attack = other.Attack
	}
	if b.TakeDamage == nil {
		b.TakeDamage = other.TakeDamage
	}
	if b.ReceiveMessage == nil {
		b.ReceiveMessage = other.ReceiveMessage
	}
}

// Attribute is a named bundle of behaviour and state composed onto an entity
// at construction time
type Attribute struct {
	Name string
	// GroupName is a coarse capability shared by several attributes, e.g. "actor".
	GroupName string
	Props     map[string]any
	Behavior  Behavior
	// Init seeds per-entity state from the template the entity was built from.
	Init func(e *Entity, t *Template)
}

// Registry maps attribute names to definitions so content tables can refer
// to attributes by name
type Registry map[string]*Attribute

// Register adds attributes to the registry, replacing same-named entries
func (r Registry) Register(attrs ...*Attribute) {
	for _, a := range attrs {
		r[a.Name] = a
	}
}

// Resolve looks up attributes by name, keeping the given order
func (r Registry) Resolve(names []string) ([]*Attribute, error) {
	attrs := make([]*Attribute, 0, len(names))
	for _, name := range names {
		a, ok := r[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// Names returns the registered attribute names, sorted
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
