package handlers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClientManager manages connected clients
type ClientManager struct {
	clients map[string]*ClientHandler
	logger  *zap.Logger
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager(logger *zap.Logger) *ClientManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
		logger:  logger,
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(id string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[id] = handler
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(id string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, id)
}

func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// BroadcastToAll sends a message to all connected clients
func (cm *ClientManager) BroadcastToAll(msg interface{}) {
	cm.ExecuteOnAllClients(func(client *ClientHandler) {
		if err := client.conn.SendMessage(msg); err != nil {
			cm.logger.Warn("failed to broadcast", zap.String("client", client.id), zap.Error(err))
		}
	})
}

// CloseAll disconnects every client; their games are recorded as abandoned.
// Messages already queued are delivered first unless grace runs out.
func (cm *ClientManager) CloseAll(grace time.Duration) {
	cm.ExecuteOnAllClients(func(client *ClientHandler) {
		client.conn.Drain()
	})

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	cm.ExecuteOnAllClients(func(client *ClientHandler) {
		select {
		case <-client.conn.Flushed():
		case <-ctx.Done():
			cm.logger.Warn("client did not flush before shutdown", zap.String("client", client.id))
		}
		client.conn.Close()
	})
}

// ExecuteOnAllClients executes a function for each connected client
func (cm *ClientManager) ExecuteOnAllClients(action func(*ClientHandler)) {
	cm.mutex.RLock()
	clients := make([]*ClientHandler, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	cm.mutex.RUnlock()

	for _, client := range clients {
		action(client)
	}
}
