package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldiron/server/content"
	"coldiron/server/entity"
	"coldiron/server/models"
	"coldiron/server/persistence"
)

// hunter attacks the player whenever it stands next to it
var hunter = &entity.Attribute{
	Name:      "hunter",
	GroupName: entity.GroupActor,
	Behavior: entity.Behavior{
		Act: func(e *entity.Entity) {
			w := e.World().(*World)
			for _, target := range w.FindInRange(e.Point(), 1, TargetEntity, e.Z()).Entities {
				if target.HasAttribute(entity.NamePlayerActor) {
					e.Attack(target)
				}
			}
		},
	},
}

// hunterContent adds a "rat" hunter template and sets the player's hit points
func hunterContent(t *testing.T, playerHP int) *content.Library {
	t.Helper()
	reg := entity.StandardAttributes()
	reg.Register(hunter)
	tables := content.Default()
	tables.Spawns = nil
	player := tables.Templates["player"]
	player.HP = playerHP
	tables.Templates["player"] = player
	tables.Templates["rat"] = content.TemplateDef{
		Character:  "r",
		Strength:   3,
		Attributes: []string{"hunter", entity.NameAttacker},
	}
	lib, err := tables.Compile(reg)
	require.NoError(t, err)
	return lib
}

func newSession(t *testing.T, db persistence.Storage, lib *content.Library, stages ...*models.Stage) *PlayerService {
	t.Helper()
	w := newTestWorld(t, lib, stages...)
	w.Player().SetPosition(1, 1, 0)
	return NewPlayerService(w, db, PlayerConfig{Name: "tester", View: NewViewport(5, 3)})
}

func corridor() *models.Stage {
	return stageFrom(
		"!!!!!!",
		"!....!",
		"!!!!!!",
	)
}

func TestApplyBeforeStartIsRejected(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	assert.ErrorIs(t, ps.Apply(Wait()), ErrNotPlayerTurn)
}

func TestApplyMovesPlayer(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())
	require.True(t, ps.PlayersTurn())

	require.NoError(t, ps.Apply(Move(1, 0)))
	assert.Equal(t, models.Position{X: 2, Y: 1}, ps.World().Player().Position())
	assert.True(t, ps.PlayersTurn())
	assert.Equal(t, 1, ps.turns)
}

func TestBlockedMoveKeepsTurn(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())
	engine := ps.World().Engine()
	before := engine.Turns()

	require.NoError(t, ps.Apply(Move(0, -1)))
	assert.Equal(t, before, engine.Turns(), "no other actor ran")
	assert.Zero(t, ps.turns)
	assert.True(t, ps.PlayersTurn())
	assert.Equal(t, models.Position{X: 1, Y: 1}, ps.World().Player().Position())
}

func TestApplyRejectsBadCommands(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())

	assert.ErrorIs(t, ps.Apply(Move(0, 0)), ErrUnknownAction)
	assert.ErrorIs(t, ps.Apply(Move(2, 0)), ErrUnknownAction)
	assert.ErrorIs(t, ps.Apply(Command{Action: "dance"}), ErrUnknownAction)
}

func TestOtherActorsRunBetweenPlayerTurns(t *testing.T) {
	lib := hunterContent(t, 0)
	ps := newSession(t, nil, lib, corridor())
	w := ps.World()
	rat := entity.New(lib.Templates["rat"])
	rat.SetPosition(4, 1, 0)
	require.NoError(t, w.AddEntity(rat, 0))
	require.NoError(t, ps.Start())
	engine := w.Engine()
	require.Equal(t, 1, engine.Turns(), "player acts first")

	require.NoError(t, ps.Apply(Wait()))
	assert.Equal(t, 3, engine.Turns(), "rat then player")
	require.NoError(t, ps.Apply(Wait()))
	assert.Equal(t, 5, engine.Turns())
}

func TestPlayerDeathEndsGameAndRecordsRun(t *testing.T) {
	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	lib := hunterContent(t, 1)

	ps := newSession(t, store, lib, corridor())
	w := ps.World()
	rat := entity.New(lib.Templates["rat"])
	rat.SetPosition(2, 1, 0)
	require.NoError(t, w.AddEntity(rat, 0))
	require.NoError(t, ps.Start())

	require.NoError(t, ps.Apply(Wait()))
	assert.True(t, w.GameOver())
	assert.Equal(t, EngineLocked, w.Engine().State())
	assert.NotContains(t, w.Entities(), w.Player())
	assert.ErrorIs(t, ps.Apply(Wait()), ErrGameOver)

	frame := ps.Snapshot()
	assert.True(t, frame.GameOver)
	assert.Contains(t, frame.Messages, "You were killed by rat")

	runs, err := store.TopRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.OutcomeDied, runs[0].Outcome)
	assert.Equal(t, "rat", runs[0].Cause)
	assert.Equal(t, "tester", runs[0].PlayerName)
	assert.Equal(t, 1, runs[0].Turns)

	ps.Abandon()
	runs, _ = store.TopRuns(0)
	assert.Len(t, runs, 1, "a run is recorded once")
}

func TestSnapshotCentresOnPlayer(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())

	frame := ps.Snapshot()
	assert.Equal(t, "Floor 1", frame.Title)
	assert.Equal(t, 5, frame.Width)
	assert.Equal(t, 3, frame.Height)
	require.Len(t, frame.Cells, 3)
	assert.Equal(t, -1, frame.OriginX)
	assert.Equal(t, 0, frame.OriginY)

	// the player sits in the middle of the window
	assert.Equal(t, models.Cell{Char: "@", Fg: "white", Bg: "black"}, frame.Cells[1][2])
	// off the map is drawn as wall
	assert.Equal(t, "#", frame.Cells[1][0].Char)
	assert.Equal(t, ".", frame.Cells[1][3].Char)
	require.Len(t, frame.Entities, 1)
	assert.Equal(t, 10, frame.Status.MaxHP)
	assert.NotEmpty(t, frame.Status.Portrait)
}

func TestRunAppliesCommandsInOrder(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())

	commands := make(chan Command, 3)
	commands <- Move(1, 0)
	commands <- Move(1, 0)
	commands <- Move(0, 1)
	close(commands)

	var frames []models.Frame
	var errs []error
	err := ps.Run(context.Background(), commands, func(f models.Frame, err error) {
		frames = append(frames, f)
		errs = append(errs, err)
	})
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, models.Position{X: 3, Y: 1}, ps.World().Player().Position())
	assert.True(t, ps.recorded, "closing the channel abandons the run")
}

func TestRunStopsOnCancel(t *testing.T) {
	ps := newSession(t, nil, quietContent(t, nil), corridor())
	require.NoError(t, ps.Start())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ps.Run(ctx, make(chan Command), func(models.Frame, error) {})
	assert.ErrorIs(t, err, context.Canceled)
}
