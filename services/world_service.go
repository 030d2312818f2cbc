package services

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"coldiron/server/content"
	"coldiron/server/dungeon"
	"coldiron/server/entity"
	"coldiron/server/geometry"
	"coldiron/server/models"
)

// DefaultMaxFloorAttempts caps random floor sampling
const DefaultMaxFloorAttempts = 100000

// WorldConfig controls how a world is built
type WorldConfig struct {
	Name   string
	Seed   string
	Width  int
	Height int
	Levels int

	MaxFloorAttempts  int
	MaxTurnsPerUnlock int

	// Generation carries generator tuning; its size fields are ignored.
	Generation dungeon.Config
}

func (cfg WorldConfig) normalized() WorldConfig {
	n := cfg
	if n.Seed == "" {
		n.Seed = DefaultSeed
	}
	if n.Width <= 0 {
		n.Width = dungeon.DefaultWidth
	}
	if n.Height <= 0 {
		n.Height = dungeon.DefaultHeight
	}
	if n.Levels <= 0 {
		n.Levels = dungeon.DefaultLevels
	}
	if n.MaxFloorAttempts <= 0 {
		n.MaxFloorAttempts = DefaultMaxFloorAttempts
	}
	if n.MaxTurnsPerUnlock <= 0 {
		n.MaxTurnsPerUnlock = DefaultMaxTurnsPerUnlock
	}
	return n
}

// WorldDeps bundles what a world is built from
type WorldDeps struct {
	Logger  *zap.Logger
	Content *content.Library
	// Stages, when set, are used instead of generating a dungeon.
	Stages []*models.Stage
	RNG    RNGFactory
}

// Target selects what FindInRange collects
type Target int

const (
	TargetFloor Target = iota
	TargetEntity
	TargetAny
	TargetRandom
)

// Found holds the result of FindInRange. Entities is only filled for
// TargetEntity, Points for every other target.
type Found struct {
	Points   []geometry.Point
	Entities []*entity.Entity
}

// World owns the stages, the entities on them and the turn engine. It is not
// safe for concurrent use; a single goroutine drives it.
type World struct {
	config  WorldConfig
	logger  *zap.Logger
	content *content.Library
	rng     *rand.Rand

	stages   []*models.Stage
	stairs   []dungeon.Stairway
	depth    int
	maxDepth int

	entities  []*entity.Entity
	player    *entity.Entity
	scheduler *Scheduler
	engine    *Engine
	gameOver  bool
}

// NewWorld builds the stages, places the player on the first level and fills
// every level from the spawn table. The engine is left locked; call Start.
func NewWorld(ctx context.Context, cfg WorldConfig, deps WorldDeps) (*World, error) {
	cfg = cfg.normalized()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lib := deps.Content
	if lib == nil {
		lib = content.MustDefault()
	}
	factory := deps.RNG
	if factory == nil {
		factory = SeededRNG
	}

	w := &World{
		config:    cfg,
		logger:    logger,
		content:   lib,
		rng:       factory(cfg.Seed, "world"),
		scheduler: NewScheduler(),
	}
	w.engine = NewEngine(w.scheduler, cfg.MaxTurnsPerUnlock)

	if deps.Stages != nil {
		if err := w.useStages(deps.Stages); err != nil {
			return nil, err
		}
	} else {
		gen := cfg.Generation
		gen.Width, gen.Height, gen.Levels = cfg.Width, cfg.Height, cfg.Levels
		if gen.Palette == nil {
			gen.Palette = lib.Palette
		}
		if gen.Logger == nil {
			gen.Logger = logger
		}
		res, err := dungeon.Generate(ctx, gen, factory(cfg.Seed, "dungeon"))
		if err != nil {
			return nil, fmt.Errorf("failed to generate dungeon: %w", err)
		}
		w.stages = res.Stages
		w.stairs = res.Stairs
	}
	w.config.Levels = len(w.stages)

	player := entity.New(lib.Player)
	if err := w.AddEntityAtRandom(player, 0); err != nil {
		return nil, fmt.Errorf("failed to place player: %w", err)
	}
	w.player = player

	for z := range w.stages {
		for _, rule := range lib.Spawns {
			for i := 0; i < rule.PerLevel; i++ {
				if err := w.AddEntityAtRandom(entity.New(rule.Template), z); err != nil {
					return nil, fmt.Errorf("failed to spawn %s on level %d: %w", rule.Template.Name, z, err)
				}
			}
		}
	}

	logger.Info("world ready",
		zap.String("seed", cfg.Seed),
		zap.Int("levels", len(w.stages)),
		zap.Int("entities", len(w.entities)))
	return w, nil
}

func (w *World) useStages(stages []*models.Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: no stages", models.ErrMalformedMap)
	}
	width, height := stages[0].Width(), stages[0].Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: level size %dx%d", models.ErrMalformedMap, width, height)
	}
	for z, stage := range stages {
		if stage.Width() != width || stage.Height() != height {
			return fmt.Errorf("%w: level %d is %dx%d, want %dx%d",
				models.ErrMalformedMap, z, stage.Width(), stage.Height(), width, height)
		}
	}
	w.stages = stages
	w.config.Width, w.config.Height = width, height
	return nil
}

func (w *World) Name() string {
	return w.config.Name
}

func (w *World) Seed() string {
	return w.config.Seed
}

func (w *World) Width() int {
	return w.config.Width
}

func (w *World) Height() int {
	return w.config.Height
}

// Levels is the number of stages
func (w *World) Levels() int {
	return len(w.stages)
}

// Depth is the level currently being played
func (w *World) Depth() int {
	return w.depth
}

// MaxDepth is the deepest level the player has reached
func (w *World) MaxDepth() int {
	return w.maxDepth
}

func (w *World) RNG() *rand.Rand {
	return w.rng
}

func (w *World) Player() *entity.Entity {
	return w.player
}

// GameOver reports whether the player has been removed
func (w *World) GameOver() bool {
	return w.gameOver
}

func (w *World) Engine() *Engine {
	return w.engine
}

// Stairs lists the generated stairways; empty for preloaded stages
func (w *World) Stairs() []dungeon.Stairway {
	return w.stairs
}

// Stage returns level z, or nil
func (w *World) Stage(z int) *models.Stage {
	if z < 0 || z >= len(w.stages) {
		return nil
	}
	return w.stages[z]
}

// GameMap captures the world's layout for storage
func (w *World) GameMap() *models.GameMap {
	return models.GameMapFromStages(w.config.Name, w.config.Seed, w.stages)
}

// Contains reports whether (x, y) lies inside the world
func (w *World) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.config.Width && y < w.config.Height
}

// Tile returns the tile at (x, y) on level z. Anything outside the world is a wall.
func (w *World) Tile(x, y, z int) models.Tile {
	stage := w.Stage(z)
	if stage == nil {
		return w.content.Palette.Tile(models.TileWall)
	}
	tile, ok := stage.Lookup(x, y)
	if !ok {
		return w.content.Palette.Tile(models.TileWall)
	}
	return tile
}

// IsFloorTile reports whether (x, y, z) is plain floor with nobody on it
func (w *World) IsFloorTile(x, y, z int) bool {
	if !w.Contains(x, y) || !w.Tile(x, y, z).IsFloor() {
		return false
	}
	_, taken := w.EntityAt(x, y, z)
	return !taken
}

// FindInRange looks at the square of the given radius around center on
// level z, excluding center itself
func (w *World) FindInRange(center geometry.Point, radius int, target Target, z int) Found {
	points := geometry.InRange(center, radius, w)
	var found Found
	switch target {
	case TargetFloor:
		for _, p := range points {
			if w.IsFloorTile(p.X, p.Y, z) {
				found.Points = append(found.Points, p)
			}
		}
	case TargetEntity:
		for _, p := range points {
			if e, ok := w.EntityAt(p.X, p.Y, z); ok {
				found.Entities = append(found.Entities, e)
			}
		}
	case TargetRandom:
		geometry.Shuffle(points, w.rng)
		found.Points = points
	default:
		found.Points = points
	}
	return found
}

// FreeFloorInRange lists unoccupied floor cells around center
func (w *World) FreeFloorInRange(center geometry.Point, radius, z int) []geometry.Point {
	return w.FindInRange(center, radius, TargetFloor, z).Points
}

// EntityAt returns the entity standing on (x, y, z)
func (w *World) EntityAt(x, y, z int) (*entity.Entity, bool) {
	for _, e := range w.entities {
		if e.Z() == z && e.X() == x && e.Y() == y {
			return e, true
		}
	}
	return nil, false
}

// Entities returns every entity in the world
func (w *World) Entities() []*entity.Entity {
	out := make([]*entity.Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// EntitiesAt returns the entities on level z
func (w *World) EntitiesAt(z int) []*entity.Entity {
	var out []*entity.Entity
	for _, e := range w.entities {
		if e.Z() == z {
			out = append(out, e)
		}
	}
	return out
}

// AddEntity puts e into the world on level z, or on its own level if it was
// already given one. Actors join the scheduler.
func (w *World) AddEntity(e *entity.Entity, z int) error {
	if e.Placed() {
		z = e.Z()
	}
	x, y := e.X(), e.Y()
	if !w.Contains(x, y) || z < 0 || z >= len(w.stages) {
		return fmt.Errorf("%w: %s at (%d,%d,%d)", ErrOutOfBounds, e.Name(), x, y, z)
	}
	if other, taken := w.EntityAt(x, y, z); taken {
		return fmt.Errorf("%w: %s at (%d,%d,%d) by %s", ErrOccupied, e.Name(), x, y, z, other.Name())
	}

	e.SetPosition(x, y, z)
	e.BindWorld(w)
	w.entities = append(w.entities, e)
	if e.HasAttribute(entity.GroupActor) {
		w.scheduler.Add(e)
	}
	return nil
}

// AddEntityAtRandom places e on a random free floor cell of level z
func (w *World) AddEntityAtRandom(e *entity.Entity, z int) error {
	p, err := w.RandomFloorXY(z)
	if err != nil {
		return err
	}
	e.SetPosition(p.X, p.Y, z)
	return w.AddEntity(e, z)
}

// RemoveEntity takes e out of the world and the scheduler. Removing the
// player ends the game and locks the engine.
func (w *World) RemoveEntity(e *entity.Entity) {
	for i, other := range w.entities {
		if other == e {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			break
		}
	}
	if e.HasAttribute(entity.GroupActor) {
		w.scheduler.Remove(e)
	}
	w.logger.Debug("entity removed",
		zap.String("name", e.Name()), zap.Int("x", e.X()), zap.Int("y", e.Y()), zap.Int("z", e.Z()))

	if e == w.player && !w.gameOver {
		w.gameOver = true
		w.engine.Lock()
	}
}

// Destroy turns a destructible tile into floor
func (w *World) Destroy(x, y, z int) {
	stage := w.Stage(z)
	if stage == nil {
		return
	}
	if tile, ok := stage.Lookup(x, y); ok && tile.Destructible {
		stage.SetValue(x, y, w.content.Palette.Tile(models.TileFloor))
	}
}

// SendMessage delivers a message to target if it takes messages
func (w *World) SendMessage(target *entity.Entity, message string) {
	if target == nil || !target.HasAttribute(entity.NameMessageRecipient) {
		return
	}
	target.ReceiveMessage(message)
}

// SendMessageInRange delivers a message to every entity around center
func (w *World) SendMessageInRange(center geometry.Point, radius, z int, message string) {
	for _, e := range w.FindInRange(center, radius, TargetEntity, z).Entities {
		w.SendMessage(e, message)
	}
}

// RandomFloorXY draws random cells of level z until one is free floor
func (w *World) RandomFloorXY(z int) (geometry.Point, error) {
	if w.Stage(z) == nil {
		return geometry.Point{}, fmt.Errorf("%w: level %d", ErrOutOfBounds, z)
	}
	for i := 0; i < w.config.MaxFloorAttempts; i++ {
		x := w.rng.Intn(w.config.Width)
		y := w.rng.Intn(w.config.Height)
		if w.IsFloorTile(x, y, z) {
			return geometry.Point{X: x, Y: y}, nil
		}
	}
	return geometry.Point{}, fmt.Errorf("%w: level %d after %d draws", ErrNoFloor, z, w.config.MaxFloorAttempts)
}

// UseTile fires the use trigger of the tile e stands on. Stairs move e one
// level up or down at the same coordinates; the player drags the active level
// along. It reports whether e changed level.
func (w *World) UseTile(e *entity.Entity, x, y int) bool {
	var dz int
	switch w.Tile(x, y, e.Z()).Use {
	case models.UseNavDown:
		dz = 1
	case models.UseNavUp:
		dz = -1
	default:
		return false
	}

	z := e.Z() + dz
	if w.Stage(z) == nil || !w.Tile(x, y, z).Passable {
		return false
	}
	if _, taken := w.EntityAt(x, y, z); taken {
		return false
	}

	e.SetPosition(x, y, z)
	if e == w.player {
		w.depth = z
		w.maxDepth = max(w.maxDepth, z)
		w.SendMessage(e, fmt.Sprintf("You reach floor %d.", z+1))
		w.logger.Debug("level changed", zap.Int("depth", z))
	}
	return true
}

// Start runs the engine until the player's first turn
func (w *World) Start() error {
	return w.engine.Start()
}

func (w *World) Lock() {
	w.engine.Lock()
}

func (w *World) Unlock() error {
	return w.engine.Unlock()
}
