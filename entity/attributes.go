package entity

import (
	"fmt"

	"coldiron/server/models"
)

// Attribute names and capability groups
const (
	NamePlayerActor      = "playerActor"
	NameFungusActor      = "fungusActor"
	NameMobile           = "mobile"
	NameDestructible     = "destructible"
	NameAttacker         = "attacker"
	NameMessageRecipient = "messageRecipient"

	GroupActor    = "actor"
	GroupAttacker = "attacker"
)

const (
	defaultMaxHP    = 10
	defaultStrength = 1

	fungusSpawnBudget = 3
	fungusSpawnChance = 0.005
	fungusAlertRadius = 5

	// MessageLimit bounds the player's message buffer
	MessageLimit = 100
)

// PlayerActor waits for outside input on every turn by locking the engine
var PlayerActor = &Attribute{
	Name:      NamePlayerActor,
	GroupName: GroupActor,
	Props: map[string]any{
		"portrait": []string{
			`...____...`,
			`../ ___\..`,
			`.()/ O,O\.`,
			`..\\__c_/.`,
			`./      \.`,
			`.|_|___||.`,
		},
	},
	Behavior: Behavior{
		Act: func(e *Entity) {
			e.world.Lock()
		},
	},
}

// FungusActor occasionally spreads into a free neighbouring floor cell
var FungusActor = &Attribute{
	Name:      NameFungusActor,
	GroupName: GroupActor,
	Init: func(e *Entity, t *Template) {
		e.spawnRemaining = fungusSpawnBudget
	},
	Behavior: Behavior{
		Act: fungusAct,
	},
}

func fungusAct(e *Entity) {
	if e.spawnRemaining <= 0 {
		return
	}
	rng := e.world.RNG()
	if rng.Float64() > fungusSpawnChance {
		return
	}
	targets := e.world.FreeFloorInRange(e.Point(), 1, e.z)
	if len(targets) == 0 {
		return
	}
	target := targets[rng.Intn(len(targets))]
	child := New(e.template)
	child.SetPosition(target.X, target.Y, e.z)
	if err := e.world.AddEntity(child, e.z); err != nil {
		return
	}
	e.spawnRemaining--
	e.world.SendMessageInRange(e.Point(), fungusAlertRadius, e.z, "The fungus spreads!")
}

// Mobile lets an entity walk, bump-attack and dig through destructible tiles
var Mobile = &Attribute{
	Name: NameMobile,
	Behavior: Behavior{
		TryMove: mobileTryMove,
	},
}

func mobileTryMove(e *Entity, x, y int) MoveResult {
	w := e.world
	if !w.Contains(x, y) {
		return MoveBlocked
	}
	if target, ok := w.EntityAt(x, y, e.z); ok {
		if target == e || !e.HasAttribute(GroupAttacker) {
			return MoveBlocked
		}
		e.Attack(target)
		return MoveAttacked
	}

	tile := w.Tile(x, y, e.z)
	switch {
	case tile.Passable:
		e.x, e.y = x, y
		if tile.Use != models.UseNone {
			w.UseTile(e, x, y)
		}
		return MoveMoved
	case tile.Destructible:
		// The wall is cleared this turn; the mover steps in on a later one.
		w.Destroy(x, y, e.z)
		return MoveDug
	default:
		return MoveBlocked
	}
}

// Destructible gives an entity hit points and defense. At zero hit points it
// is removed from the world.
var Destructible = &Attribute{
	Name: NameDestructible,
	Init: func(e *Entity, t *Template) {
		e.maxHP = t.MaxHP
		if e.maxHP <= 0 {
			e.maxHP = defaultMaxHP
		}
		e.hp = t.HP
		if e.hp <= 0 {
			e.hp = e.maxHP
		}
		e.defense = t.Defense
	},
	Behavior: Behavior{
		TakeDamage: destructibleTakeDamage,
	},
}

func destructibleTakeDamage(e *Entity, attacker *Entity, damage int) {
	e.AdjustHP(-damage)
	if e.hp > 0 {
		return
	}
	killer := "something"
	if attacker != nil {
		killer = attacker.name
		attacker.kills++
		e.world.SendMessage(attacker, fmt.Sprintf("You kill the %s!", e.name))
	}
	e.killedBy = killer
	e.world.SendMessage(e, fmt.Sprintf("You were killed by %s", killer))
	e.world.RemoveEntity(e)
}

// Attacker lets an entity strike destructible targets
var Attacker = &Attribute{
	Name:      NameAttacker,
	GroupName: GroupAttacker,
	Init: func(e *Entity, t *Template) {
		e.strength = t.Strength
		if e.strength <= 0 {
			e.strength = defaultStrength
		}
	},
	Behavior: Behavior{
		Attack: attackerAttack,
	},
}

func attackerAttack(e *Entity, target *Entity) {
	if !target.HasAttribute(NameDestructible) {
		return
	}
	maxDamage := max(0, e.AttackPower()-target.Defense())
	damage := 1
	if maxDamage > 0 {
		damage += e.world.RNG().Intn(maxDamage)
	}
	e.world.SendMessage(e, fmt.Sprintf("You strike the %s for %d damage!", target.name, damage))
	e.world.SendMessage(target, fmt.Sprintf("The %s strikes you for %d damage!", e.name, damage))
	target.TakeDamage(e, damage)
}

// MessageRecipient gives an entity a message buffer. Only the player keeps
// what it hears.
var MessageRecipient = &Attribute{
	Name: NameMessageRecipient,
	Init: func(e *Entity, t *Template) {
		e.messages = nil
	},
	Behavior: Behavior{
		ReceiveMessage: func(e *Entity, message string) {
			if !e.HasAttribute(NamePlayerActor) {
				return
			}
			e.messages = append(e.messages, message)
			if over := len(e.messages) - MessageLimit; over > 0 {
				e.messages = e.messages[over:]
			}
		},
	},
}

// StandardAttributes returns a registry holding every built-in attribute
func StandardAttributes() Registry {
	r := Registry{}
	r.Register(PlayerActor, FungusActor, Mobile, Destructible, Attacker, MessageRecipient)
	return r
}
