package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"coldiron/server/models"
	"coldiron/server/persistence"
)

// Action is what the player chose to do with a turn
type Action string

const (
	ActionMove Action = "move"
	ActionWait Action = "wait"
)

// Command is one player decision, e.g. a key press on the play screen
type Command struct {
	Action Action
	DX, DY int
}

// Move is shorthand for a move command
func Move(dx, dy int) Command {
	return Command{Action: ActionMove, DX: dx, DY: dy}
}

// Wait is shorthand for passing the turn
func Wait() Command {
	return Command{Action: ActionWait}
}

// PlayerConfig describes the person playing a session
type PlayerConfig struct {
	Name   string
	View   Viewport
	Logger *zap.Logger
}

// PlayerService runs one player's game: it applies commands on the player's
// turn, resumes the engine and records the run when it ends.
type PlayerService struct {
	world  *World
	db     persistence.Storage
	logger *zap.Logger
	view   Viewport
	name   string

	started  time.Time
	turns    int
	recorded bool
	mutex    sync.RWMutex
}

// NewPlayerService creates a new player service. db may be nil, in which case
// runs are not recorded.
func NewPlayerService(world *World, db persistence.Storage, cfg PlayerConfig) *PlayerService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	view := cfg.View
	if view.width == 0 {
		view = NewViewport(0, 0)
	}
	name := cfg.Name
	if name == "" {
		name = "anonymous"
	}
	return &PlayerService{
		world:   world,
		db:      db,
		logger:  logger.With(zap.String("player", name), zap.String("seed", world.Seed())),
		view:    view,
		name:    name,
		started: time.Now(),
	}
}

func (ps *PlayerService) World() *World {
	return ps.world
}

// Start runs the engine up to the player's first turn
func (ps *PlayerService) Start() error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if err := ps.world.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	return nil
}

// PlayersTurn reports whether the engine is waiting on the player
func (ps *PlayerService) PlayersTurn() bool {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()
	return ps.playersTurn()
}

func (ps *PlayerService) playersTurn() bool {
	engine := ps.world.Engine()
	return engine.State() == EngineLocked && engine.Scheduler().Current() == Actor(ps.world.Player())
}

// Apply carries out cmd for the player and, if it used up the turn, lets every
// other actor take theirs until the player is up again
func (ps *PlayerService) Apply(cmd Command) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if ps.world.GameOver() {
		return ErrGameOver
	}
	if !ps.playersTurn() {
		return ErrNotPlayerTurn
	}

	player := ps.world.Player()
	switch cmd.Action {
	case ActionMove:
		if cmd.DX < -1 || cmd.DX > 1 || cmd.DY < -1 || cmd.DY > 1 || (cmd.DX == 0 && cmd.DY == 0) {
			return fmt.Errorf("%w: move by (%d,%d)", ErrUnknownAction, cmd.DX, cmd.DY)
		}
		result := player.TryMove(player.X()+cmd.DX, player.Y()+cmd.DY)
		if !result.ConsumesTurn() {
			return nil
		}
	case ActionWait:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	ps.turns++

	if err := player.Continue(); err != nil {
		if errors.Is(err, ErrTurnBudgetExhausted) {
			ps.logger.Warn("engine stopped without reaching the player", zap.Error(err))
		}
		return fmt.Errorf("failed to resume engine: %w", err)
	}

	if ps.world.GameOver() {
		ps.recordRun(models.OutcomeDied)
	}
	return nil
}

// Snapshot renders the current state for a client
func (ps *PlayerService) Snapshot() models.Frame {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()
	return ps.view.Frame(ps.world)
}

// Abandon records an unfinished run, e.g. when the client disconnects
func (ps *PlayerService) Abandon() {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()
	ps.recordRun(models.OutcomeAbandoned)
}

// Run applies commands in order until the channel closes, ctx is cancelled or
// the game ends. After every command publish gets the new frame and the
// command's error.
func (ps *PlayerService) Run(ctx context.Context, commands <-chan Command, publish func(models.Frame, error)) error {
	for {
		select {
		case <-ctx.Done():
			ps.Abandon()
			return ctx.Err()
		case cmd, ok := <-commands:
			if !ok {
				ps.Abandon()
				return nil
			}
			err := ps.Apply(cmd)
			publish(ps.Snapshot(), err)
			if ps.world.GameOver() {
				return nil
			}
		}
	}
}

// recordRun saves the run once. Callers hold the mutex.
func (ps *PlayerService) recordRun(outcome string) {
	if ps.recorded {
		return
	}
	ps.recorded = true

	player := ps.world.Player()
	run := &models.RunRecord{
		ID:         fmt.Sprintf("run_%d", time.Now().UnixNano()),
		PlayerName: ps.name,
		Seed:       ps.world.Seed(),
		MaxDepth:   ps.world.MaxDepth(),
		Turns:      ps.turns,
		Kills:      player.Kills(),
		Outcome:    outcome,
		Cause:      player.KilledBy(),
		StartedAt:  ps.started,
		EndedAt:    time.Now(),
	}
	ps.logger.Info("run finished",
		zap.String("outcome", outcome),
		zap.Int("max_depth", run.MaxDepth),
		zap.Int("turns", run.Turns),
		zap.Int("kills", run.Kills))

	if ps.db == nil {
		return
	}
	if err := ps.db.SaveRun(run); err != nil {
		ps.logger.Error("failed to save run", zap.Error(err))
	}
}
