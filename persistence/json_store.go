package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"coldiron/server/models"
)

// JSONStore handles data persistence using a local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData represents the structure of the JSON database
type JSONData struct {
	Worlds map[string]*models.GameMap `json:"worlds"`
	Runs   []*models.RunRecord        `json:"runs"`
}

// NewJSONStore creates a new JSON storage manager
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Worlds: make(map[string]*models.GameMap),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
	} else {
		store.mutex.Lock()
		err := store.saveToFile()
		store.mutex.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Worlds == nil {
		js.data.Worlds = make(map[string]*models.GameMap)
	}
	return nil
}

// saveToFile writes the whole database to a temporary file and renames it
// over the old one. Callers hold the write lock.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), filepath.Base(js.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// SaveWorld saves a dungeon layout under name
func (js *JSONStore) SaveWorld(name string, gameMap *models.GameMap) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Worlds[name] = gameMap
	return js.saveToFile()
}

// LoadWorld loads a dungeon layout by name
func (js *JSONStore) LoadWorld(name string) (*models.GameMap, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	world, exists := js.data.Worlds[name]
	if !exists {
		return nil, fmt.Errorf("world %s: %w", name, ErrNotFound)
	}

	return world, nil
}

// SaveRun appends a finished run
func (js *JSONStore) SaveRun(run *models.RunRecord) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	js.data.Runs = append(js.data.Runs, run)
	return js.saveToFile()
}

// TopRuns returns up to limit runs, best first. A non-positive limit returns all.
func (js *JSONStore) TopRuns(limit int) ([]*models.RunRecord, error) {
	js.mutex.RLock()
	runs := make([]*models.RunRecord, len(js.data.Runs))
	copy(runs, js.data.Runs)
	js.mutex.RUnlock()

	rankRuns(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
