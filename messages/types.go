package messages

import "coldiron/server/models"

// MessageType defines the type of message being sent
type MessageType string

const (
	// client to server
	MessageTypeNewGame    MessageType = "new_game"
	MessageTypeKey        MessageType = "key"
	MessageTypeHallOfFame MessageType = "hall_of_fame"

	// server to client
	MessageTypeGameStarted MessageType = "game_started"
	MessageTypeUpdate      MessageType = "update"
	MessageTypeGameOver    MessageType = "game_over"
	MessageTypeError       MessageType = "error"
)

// Error codes carried by ErrorMessage
const (
	CodeBadMessage     = "BAD_MESSAGE"
	CodeUnknownType    = "UNKNOWN_MESSAGE_TYPE"
	CodeNoGame         = "NO_GAME"
	CodeNewGameFailed  = "NEW_GAME_FAILED"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeGameOver       = "GAME_OVER"
	CodeCommandFailed  = "COMMAND_FAILED"
	CodeHallOfFameDown = "HALL_OF_FAME_UNAVAILABLE"
	CodeShutdown       = "SHUTDOWN"
)

// BaseMessage is the base structure for all messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewGameMessage asks for a fresh game, abandoning the current one
type NewGameMessage struct {
	PlayerName string `json:"player_name"`
}

// KeyMessage is a browser key press, named as KeyboardEvent.key names it
type KeyMessage struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
}

// HallOfFameMessage requests, and answers with, the best runs
type HallOfFameMessage struct {
	Limit int                 `json:"limit,omitempty"`
	Runs  []*models.RunRecord `json:"runs,omitempty"`
}

// GameStartedMessage confirms a new game
type GameStartedMessage struct {
	Seed   string `json:"seed"`
	World  string `json:"world,omitempty"`
	Levels int    `json:"levels"`
}

// UpdateMessage is the rendered view after a turn
type UpdateMessage struct {
	Frame models.Frame `json:"frame"`
}

// GameOverMessage ends a game
type GameOverMessage struct {
	Message string       `json:"message"`
	Frame   models.Frame `json:"frame"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
