package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldiron/server/models"
	"coldiron/server/persistence"
)

func newGameService(t *testing.T, cfg GameConfig) (*GameService, *persistence.JSONStore) {
	t.Helper()
	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	if cfg.Width == 0 {
		cfg.Width, cfg.Height, cfg.Levels = 40, 40, 1
	}
	return NewGameService(cfg, store, nil, nil), store
}

func TestNamedWorldIsStoredThenReused(t *testing.T) {
	gs, store := newGameService(t, GameConfig{WorldName: "crypt"})

	first, err := gs.NewWorld(context.Background())
	require.NoError(t, err)
	stored, err := store.LoadWorld("crypt")
	require.NoError(t, err)
	assert.Equal(t, first.GameMap().Levels, stored.Levels)

	// a fresh random seed would generate a different layout
	second, err := gs.NewWorld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.GameMap().Levels, second.GameMap().Levels)
	assert.Equal(t, "crypt", second.Name())
}

func TestUnnamedWorldIsNotStored(t *testing.T) {
	gs, store := newGameService(t, GameConfig{Seed: "loose"})

	_, err := gs.NewWorld(context.Background())
	require.NoError(t, err)
	_, err = store.LoadWorld("")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestCorruptStoredWorldFails(t *testing.T) {
	gs, store := newGameService(t, GameConfig{WorldName: "broken"})
	require.NoError(t, store.SaveWorld("broken", &models.GameMap{Name: "broken", Width: 2, Height: 2, Depth: 3}))

	_, err := gs.NewWorld(context.Background())
	assert.ErrorIs(t, err, models.ErrMalformedMap)
}

func TestNewSessionWaitsOnPlayer(t *testing.T) {
	gs, _ := newGameService(t, GameConfig{Seed: "session"})

	ps, err := gs.NewSession(context.Background(), "ada")
	require.NoError(t, err)
	assert.True(t, ps.PlayersTurn())
	assert.Equal(t, "session", ps.World().Seed())
	assert.Equal(t, "Floor 1", ps.Snapshot().Title)
}

func TestHallOfFameRanksAbandonedRuns(t *testing.T) {
	gs, _ := newGameService(t, GameConfig{Seed: "fame"})

	for _, name := range []string{"ada", "bo"} {
		ps, err := gs.NewSession(context.Background(), name)
		require.NoError(t, err)
		ps.Abandon()
	}

	runs, err := gs.HallOfFame(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, models.OutcomeAbandoned, run.Outcome)
		assert.Equal(t, "fame", run.Seed)
	}

	none, err := NewGameService(GameConfig{}, nil, nil, nil).HallOfFame(10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
