package models

import "time"

// Run outcomes
const (
	OutcomeDied      = "died"
	OutcomeAbandoned = "abandoned"
)

// RunRecord summarises a finished game for the hall of fame
type RunRecord struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"player_name"`
	Seed       string    `json:"seed"`
	MaxDepth   int       `json:"max_depth"` // Deepest level reached, zero-based
	Turns      int       `json:"turns"`
	Kills      int       `json:"kills"`
	Outcome    string    `json:"outcome"`
	Cause      string    `json:"cause,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// EntityView is the read-only render state of an entity
type EntityView struct {
	Name string `json:"name"`
	Position
	Char  string `json:"char"`
	Fg    string `json:"fg"`
	Bg    string `json:"bg"`
	HP    int    `json:"hp,omitempty"`
	MaxHP int    `json:"max_hp,omitempty"`
}
