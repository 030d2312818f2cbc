package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coldiron/server/input"
	"coldiron/server/messages"
	"coldiron/server/models"
	"coldiron/server/network"
	"coldiron/server/services"
)

const (
	commandBuffer     = 16
	defaultHallOfFame = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

var clientSeq atomic.Uint64

// game is one running session and the goroutine applying its commands
type game struct {
	session  *services.PlayerService
	commands chan services.Command
	cancel   context.CancelFunc
	done     chan struct{}
}

// ClientHandler manages a single client connection. Every connection plays
// its own game.
type ClientHandler struct {
	id         string
	conn       *network.Connection
	games      *services.GameService
	clients    *ClientManager
	dispatcher *input.Dispatcher
	logger     *zap.Logger

	ctx   context.Context
	game  *game
	mutex sync.Mutex
}

// NewWebsocketHandler upgrades requests and serves one client per connection
func NewWebsocketHandler(games *services.GameService, clients *ClientManager, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade connection", zap.Error(err))
			return
		}
		HandleClientConnection(r.Context(), conn, games, clients, logger)
	}
}

// HandleClientConnection handles a new client connection and returns once it
// is closed
func HandleClientConnection(ctx context.Context, wsConn *websocket.Conn, games *services.GameService, clients *ClientManager, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	id := fmt.Sprintf("client_%d", clientSeq.Add(1))
	logger = logger.With(zap.String("client", id))
	conn := network.NewConnection(wsConn, logger)
	handler := &ClientHandler{
		id:         id,
		conn:       conn,
		games:      games,
		clients:    clients,
		dispatcher: input.NewDispatcher(logger),
		logger:     logger,
		ctx:        ctx,
	}
	if err := handler.dispatcher.Enter(input.PlayTable(handler.enqueue, logger)); err != nil {
		logger.Error("failed to bind play keys", zap.Error(err))
		conn.Close()
		return
	}

	clients.AddClient(id, handler)
	logger.Info("client connected", zap.String("remote", conn.RemoteAddr()))

	// Start the write pump in a goroutine
	go conn.WritePump()

	// Handle the read pump in the current goroutine
	conn.ReadPump(handler)

	handler.endGame()
	clients.RemoveClient(id)
	logger.Info("client disconnected")
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var baseMsg messages.BaseMessage
	if err := json.Unmarshal(message, &baseMsg); err != nil {
		h.logger.Debug("malformed message", zap.Error(err))
		h.sendError(messages.CodeBadMessage, "message is not valid JSON")
		return
	}

	switch baseMsg.Type {
	case messages.MessageTypeNewGame:
		h.handleNewGame(baseMsg.Payload)
	case messages.MessageTypeKey:
		h.handleKey(baseMsg.Payload)
	case messages.MessageTypeHallOfFame:
		h.handleHallOfFame(baseMsg.Payload)
	default:
		h.logger.Debug("unknown message type", zap.String("type", string(baseMsg.Type)))
		h.sendError(messages.CodeUnknownType, "Unknown message type received")
	}
}

// decodePayload re-decodes a generic payload into out
func decodePayload(payload interface{}, out interface{}) error {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// handleNewGame abandons any running game and starts another
func (h *ClientHandler) handleNewGame(payload interface{}) {
	var msg messages.NewGameMessage
	if err := decodePayload(payload, &msg); err != nil {
		h.sendError(messages.CodeBadMessage, "bad new_game payload")
		return
	}

	h.endGame()

	session, err := h.games.NewSession(h.ctx, msg.PlayerName)
	if err != nil {
		h.logger.Error("failed to start game", zap.Error(err))
		h.sendError(messages.CodeNewGameFailed, "Failed to start a new game")
		return
	}

	ctx, cancel := context.WithCancel(h.ctx)
	g := &game{
		session:  session,
		commands: make(chan services.Command, commandBuffer),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	h.mutex.Lock()
	h.game = g
	h.mutex.Unlock()

	world := session.World()
	h.send(messages.MessageTypeGameStarted, messages.GameStartedMessage{
		Seed:   world.Seed(),
		World:  world.Name(),
		Levels: world.Levels(),
	})
	h.send(messages.MessageTypeUpdate, messages.UpdateMessage{Frame: session.Snapshot()})

	go func() {
		defer close(g.done)
		if err := session.Run(ctx, g.commands, h.publish); err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Error("game stopped", zap.Error(err))
		}
	}()
}

func (h *ClientHandler) handleKey(payload interface{}) {
	var msg messages.KeyMessage
	if err := decodePayload(payload, &msg); err != nil {
		h.sendError(messages.CodeBadMessage, "bad key payload")
		return
	}
	g := h.currentGame()
	if g == nil {
		h.sendError(messages.CodeNoGame, "Start a game first")
		return
	}
	select {
	case <-g.done:
		h.sendError(messages.CodeGameOver, "The game is over, start a new one")
		return
	default:
	}
	h.dispatcher.Dispatch(input.FromBrowser(msg.Key, msg.Ctrl, msg.Alt, msg.Shift, msg.Meta))
}

func (h *ClientHandler) handleHallOfFame(payload interface{}) {
	var msg messages.HallOfFameMessage
	if err := decodePayload(payload, &msg); err != nil {
		h.sendError(messages.CodeBadMessage, "bad hall_of_fame payload")
		return
	}
	limit := msg.Limit
	if limit <= 0 {
		limit = defaultHallOfFame
	}
	runs, err := h.games.HallOfFame(limit)
	if err != nil {
		h.logger.Error("failed to load hall of fame", zap.Error(err))
		h.sendError(messages.CodeHallOfFameDown, "Hall of fame is unavailable")
		return
	}
	h.send(messages.MessageTypeHallOfFame, messages.HallOfFameMessage{Runs: runs})
}

// enqueue hands a command to the running game. Keys pressed faster than the
// game can apply them are dropped.
func (h *ClientHandler) enqueue(cmd services.Command) {
	g := h.currentGame()
	if g == nil {
		return
	}
	select {
	case g.commands <- cmd:
	default:
		h.logger.Debug("command dropped, queue full", zap.String("action", string(cmd.Action)))
	}
}

// publish runs on the game goroutine after every command
func (h *ClientHandler) publish(frame models.Frame, err error) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotPlayerTurn):
			h.sendError(messages.CodeNotYourTurn, err.Error())
		case errors.Is(err, services.ErrGameOver):
			h.sendError(messages.CodeGameOver, err.Error())
		default:
			h.logger.Warn("command failed", zap.Error(err))
			h.sendError(messages.CodeCommandFailed, err.Error())
		}
	}
	if frame.GameOver {
		h.send(messages.MessageTypeGameOver, messages.GameOverMessage{
			Message: "You have died.",
			Frame:   frame,
		})
		return
	}
	h.send(messages.MessageTypeUpdate, messages.UpdateMessage{Frame: frame})
}

func (h *ClientHandler) currentGame() *game {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.game
}

// endGame stops the running game, if any, and waits for it to record the run
func (h *ClientHandler) endGame() {
	h.mutex.Lock()
	g := h.game
	h.game = nil
	h.mutex.Unlock()

	if g == nil {
		return
	}
	g.cancel()
	<-g.done
}

func (h *ClientHandler) send(t messages.MessageType, payload interface{}) {
	msg := messages.BaseMessage{Type: t, Payload: payload}
	if err := h.conn.SendMessage(msg); err != nil && !errors.Is(err, network.ErrConnectionClosed) {
		h.logger.Error("failed to send message", zap.String("type", string(t)), zap.Error(err))
	}
}

func (h *ClientHandler) sendError(code, message string) {
	h.send(messages.MessageTypeError, messages.ErrorMessage{Code: code, Message: message})
}
