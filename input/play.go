package input

import (
	"go.uber.org/zap"

	"coldiron/server/services"
)

// Konami is the sequence bound on the play screen
const Konami = "up,down,left,right,b,a"

var moves = map[string][2]int{
	"up":    {0, -1},
	"down":  {0, 1},
	"left":  {-1, 0},
	"right": {1, 0},
	"k":     {0, -1},
	"j":     {0, 1},
	"h":     {-1, 0},
	"l":     {1, 0},
	"y":     {-1, -1},
	"u":     {1, -1},
	"b":     {-1, 1},
	"n":     {1, 1},
}

// PlayTable is the command table of the play screen. Movement and waiting
// keys are turned into commands and handed to send.
func PlayTable(send func(services.Command), logger *zap.Logger) *CommandTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := &CommandTable{
		Name: "play",
		Keys: map[string]Handler{
			"space": func(Event) { send(services.Wait()) },
			".":     func(Event) { send(services.Wait()) },
			AnyKey: func(ev Event) {
				logger.Debug("unbound key", zap.String("key", ev.String()))
			},
		},
		Shortcuts: map[string]Handler{
			"ctrl,z": func(Event) { logger.Info("undo requested, nothing to undo") },
		},
		Sequences: map[string]Handler{
			Konami: func(Event) { logger.Info("konami code entered") },
		},
	}
	for key, d := range moves {
		dx, dy := d[0], d[1]
		table.Keys[key] = func(Event) { send(services.Move(dx, dy)) }
	}
	return table
}
