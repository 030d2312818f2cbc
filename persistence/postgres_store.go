package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"coldiron/server/models"
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (dm *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id SERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		seed TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		levels JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		player_name TEXT NOT NULL,
		seed TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		turns INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		cause TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		ended_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS runs_rank_idx ON runs (max_depth DESC, kills DESC, turns ASC);
	`

	_, err := dm.db.Exec(schema)
	return err
}

// SaveWorld saves a dungeon layout to the database
func (dm *PostgresStore) SaveWorld(name string, gameMap *models.GameMap) error {
	levelsJSON, err := json.Marshal(gameMap.Levels)
	if err != nil {
		return fmt.Errorf("failed to marshal world levels: %w", err)
	}

	query := `
	INSERT INTO worlds (name, seed, width, height, depth, levels)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (name)
	DO UPDATE SET
		seed = $2, width = $3, height = $4, depth = $5, levels = $6,
		updated_at = NOW()
	`

	_, err = dm.db.Exec(query,
		name, gameMap.Seed, gameMap.Width, gameMap.Height, gameMap.Depth,
		string(levelsJSON))
	if err != nil {
		return fmt.Errorf("failed to save world: %w", err)
	}

	return nil
}

// LoadWorld loads a dungeon layout from the database by name
func (dm *PostgresStore) LoadWorld(name string) (*models.GameMap, error) {
	query := `SELECT seed, width, height, depth, levels FROM worlds WHERE name = $1`

	gameMap := models.GameMap{Name: name}
	var levelsJSON string

	err := dm.db.QueryRow(query, name).Scan(
		&gameMap.Seed, &gameMap.Width, &gameMap.Height, &gameMap.Depth, &levelsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("world %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load world: %w", err)
	}

	if err := json.Unmarshal([]byte(levelsJSON), &gameMap.Levels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world levels: %w", err)
	}

	return &gameMap, nil
}

// SaveRun inserts a finished run
func (dm *PostgresStore) SaveRun(run *models.RunRecord) error {
	query := `
	INSERT INTO runs (id, player_name, seed, max_depth, turns, kills, outcome, cause, started_at, ended_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO NOTHING
	`

	_, err := dm.db.Exec(query,
		run.ID, run.PlayerName, run.Seed, run.MaxDepth, run.Turns, run.Kills,
		run.Outcome, run.Cause, run.StartedAt, run.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// TopRuns returns up to limit runs, best first. A non-positive limit returns all.
func (dm *PostgresStore) TopRuns(limit int) ([]*models.RunRecord, error) {
	query := `
	SELECT id, player_name, seed, max_depth, turns, kills, outcome, cause, started_at, ended_at
	FROM runs
	ORDER BY max_depth DESC, kills DESC, turns ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := dm.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunRecord
	for rows.Next() {
		var run models.RunRecord
		if err := rows.Scan(
			&run.ID, &run.PlayerName, &run.Seed, &run.MaxDepth, &run.Turns, &run.Kills,
			&run.Outcome, &run.Cause, &run.StartedAt, &run.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}

// Close closes the database connection
func (dm *PostgresStore) Close() error {
	dm.logger.Info("closing database connection")
	return dm.db.Close()
}
