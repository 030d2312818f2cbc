package services

import "errors"

var (
	// ErrOutOfBounds is returned when an entity is placed outside the world
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrOccupied is returned when a cell already holds an entity
	ErrOccupied = errors.New("position occupied")
	// ErrNoFloor is returned when random floor sampling gives up
	ErrNoFloor = errors.New("no free floor found")

	ErrEngineNotLocked     = errors.New("cannot unlock an engine that is not locked")
	ErrTurnBudgetExhausted = errors.New("turn budget exhausted without reaching a locking actor")

	ErrNotPlayerTurn = errors.New("not the player's turn")
	ErrGameOver      = errors.New("game over")
	ErrUnknownAction = errors.New("unknown action")
)
