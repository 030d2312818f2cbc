package persistence

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldiron/server/models"
)

// Runs only against a real database: TEST_DATABASE_URL=postgres://...
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := NewPostgresStore(dsn, nil)
	require.NoError(t, err)
	defer store.Close()

	name := "test-" + time.Now().Format("20060102150405.000000")
	gm := &models.GameMap{
		Name: name, Seed: "s", Width: 1, Height: 2, Depth: 1,
		Levels: [][][]int{{{int(models.TileFloor)}, {int(models.TileWall)}}},
	}
	require.NoError(t, store.SaveWorld(name, gm))
	loaded, err := store.LoadWorld(name)
	require.NoError(t, err)
	assert.Equal(t, gm, loaded)

	_, err = store.LoadWorld(name + "-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	run := &models.RunRecord{ID: name, PlayerName: "tester", Seed: "s", MaxDepth: 99, Outcome: models.OutcomeDied, StartedAt: now, EndedAt: now}
	require.NoError(t, store.SaveRun(run))
	top, err := store.TopRuns(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, name, top[0].ID)
}
