package main

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"coldiron/server/input"
	"coldiron/server/services"
)

// app plays one local game after another on a terminal
type app struct {
	games      *services.GameService
	playerName string
	logger     *zap.Logger

	session    *services.PlayerService
	dispatcher *input.Dispatcher
	play       *input.CommandTable
	gameOver   *input.CommandTable
	current    *input.CommandTable

	notice string
	quit   bool
}

func newApp(games *services.GameService, playerName string, logger *zap.Logger) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{
		games:      games,
		playerName: playerName,
		logger:     logger,
		dispatcher: input.NewDispatcher(logger),
	}

	a.play = input.PlayTable(a.apply, logger)
	a.play.Keys["escape"] = func(input.Event) { a.leave() }
	a.play.Shortcuts["ctrl,c"] = func(input.Event) { a.leave() }

	a.gameOver = &input.CommandTable{
		Name: "game over",
		Keys: map[string]input.Handler{
			"enter":  func(input.Event) { a.startGame() },
			"escape": func(input.Event) { a.quit = true },
		},
		Shortcuts: map[string]input.Handler{
			"ctrl,c": func(input.Event) { a.quit = true },
		},
	}
	return a
}

// switchTable swaps the bound commands, the way a screen change does
func (a *app) switchTable(table *input.CommandTable) {
	if a.current != nil {
		if err := a.dispatcher.Exit(a.current); err != nil {
			a.logger.Error("failed to unbind commands", zap.Error(err))
		}
	}
	a.current = table
	if err := a.dispatcher.Enter(table); err != nil {
		a.logger.Error("failed to bind commands", zap.Error(err))
	}
}

func (a *app) startGame() {
	session, err := a.games.NewSession(context.Background(), a.playerName)
	if err != nil {
		a.logger.Error("failed to start game", zap.Error(err))
		a.notice = err.Error()
		a.quit = true
		return
	}
	a.session = session
	a.notice = ""
	a.switchTable(a.play)
}

func (a *app) apply(cmd services.Command) {
	a.notice = ""
	if err := a.session.Apply(cmd); err != nil {
		a.notice = err.Error()
	}
	if a.session.World().GameOver() {
		a.switchTable(a.gameOver)
	}
}

// leave abandons the running game and quits
func (a *app) leave() {
	if a.session != nil {
		a.session.Abandon()
	}
	a.quit = true
}

func (a *app) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.dispatcher.Dispatch(input.FromTcell(ev.Key(), ev.Rune(), ev.Modifiers()))
	}
}

func (a *app) draw(screen tcell.Screen) {
	screen.Clear()
	if a.session != nil {
		drawFrame(screen, a.session.Snapshot(), a.notice)
	}
	screen.Show()
}

// run draws and handles events until the player quits
func (a *app) run(screen tcell.Screen) {
	a.startGame()
	for !a.quit {
		a.draw(screen)
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
		default:
			a.handle(ev)
		}
	}
}
