package persistence

import (
	"errors"
	"sort"

	"coldiron/server/models"
)

// ErrNotFound is returned when a stored record does not exist
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SaveWorld(name string, gameMap *models.GameMap) error
	LoadWorld(name string) (*models.GameMap, error)
	SaveRun(run *models.RunRecord) error
	// TopRuns returns the best finished runs, deepest first.
	TopRuns(limit int) ([]*models.RunRecord, error)
	Close() error
}

// rankRuns orders runs by depth reached, then kills, then fewest turns
func rankRuns(runs []*models.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.MaxDepth != b.MaxDepth {
			return a.MaxDepth > b.MaxDepth
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		return a.Turns < b.Turns
	})
}
