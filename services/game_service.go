package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"coldiron/server/content"
	"coldiron/server/dungeon"
	"coldiron/server/models"
	"coldiron/server/persistence"
)

// GameConfig holds the settings shared by every new game
type GameConfig struct {
	// WorldName, when set, pins every game to one stored dungeon layout.
	WorldName string
	// Seed, when set, makes every game identical.
	Seed   string
	Width  int
	Height int
	Levels int

	Generation dungeon.Config
	View       Viewport
}

// GameService starts new games
type GameService struct {
	config  GameConfig
	db      persistence.Storage
	content *content.Library
	logger  *zap.Logger
	rng     RNGFactory
}

// NewGameService creates a new game service
func NewGameService(cfg GameConfig, db persistence.Storage, lib *content.Library, logger *zap.Logger) *GameService {
	if lib == nil {
		lib = content.MustDefault()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{
		config:  cfg,
		db:      db,
		content: lib,
		logger:  logger,
		rng:     SeededRNG,
	}
}

// NewWorld builds the world for a new game. With a world name the stored
// layout is reused, or generated and stored under that name the first time.
func (gs *GameService) NewWorld(ctx context.Context) (*World, error) {
	seed := gs.config.Seed
	if seed == "" {
		seed = NewSeed()
	}
	cfg := WorldConfig{
		Name:       gs.config.WorldName,
		Seed:       seed,
		Width:      gs.config.Width,
		Height:     gs.config.Height,
		Levels:     gs.config.Levels,
		Generation: gs.config.Generation,
	}
	deps := WorldDeps{
		Logger:  gs.logger,
		Content: gs.content,
		RNG:     gs.rng,
	}

	if gs.config.WorldName == "" || gs.db == nil {
		return NewWorld(ctx, cfg, deps)
	}

	stages, err := gs.loadStages(gs.config.WorldName)
	if err != nil {
		return nil, err
	}
	if stages != nil {
		deps.Stages = stages
		return NewWorld(ctx, cfg, deps)
	}

	world, err := NewWorld(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	if err := gs.db.SaveWorld(gs.config.WorldName, world.GameMap()); err != nil {
		gs.logger.Error("failed to store generated world", zap.String("world", gs.config.WorldName), zap.Error(err))
	} else {
		gs.logger.Info("stored generated world", zap.String("world", gs.config.WorldName))
	}
	return world, nil
}

// loadStages returns nil stages when no layout is stored under name
func (gs *GameService) loadStages(name string) ([]*models.Stage, error) {
	gm, err := gs.db.LoadWorld(name)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load world %s: %w", name, err)
	}
	stages, err := gm.Stages(gs.content.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to restore world %s: %w", name, err)
	}
	gs.logger.Info("loaded stored world", zap.String("world", name), zap.Int("levels", len(stages)))
	return stages, nil
}

// NewSession builds a world and starts a player on it
func (gs *GameService) NewSession(ctx context.Context, playerName string) (*PlayerService, error) {
	world, err := gs.NewWorld(ctx)
	if err != nil {
		return nil, err
	}
	session := NewPlayerService(world, gs.db, PlayerConfig{
		Name:   playerName,
		View:   gs.config.View,
		Logger: gs.logger,
	})
	if err := session.Start(); err != nil {
		return nil, err
	}
	return session, nil
}

// HallOfFame lists the best recorded runs
func (gs *GameService) HallOfFame(limit int) ([]*models.RunRecord, error) {
	if gs.db == nil {
		return nil, nil
	}
	return gs.db.TopRuns(limit)
}
