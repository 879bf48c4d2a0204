package ws

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benbeisheim/arcade-backend/internal/service"
)

// Conn is the part of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// client serializes writes; a websocket connection allows one writer at a time.
type client struct {
	mu   sync.Mutex
	conn Conn
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub tracks the open sockets of every game and fans out state updates.
type Hub struct {
	mu     sync.RWMutex
	games  map[string]map[string]*client
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		games:  make(map[string]map[string]*client),
		logger: logger,
	}
}

// Register adds conn to gameID and returns the connection id used to
// unregister it.
func (h *Hub) Register(gameID string, conn Conn) string {
	connID := uuid.New().String()

	h.mu.Lock()
	conns, ok := h.games[gameID]
	if !ok {
		conns = make(map[string]*client)
		h.games[gameID] = conns
	}
	conns[connID] = &client{conn: conn}
	h.mu.Unlock()

	h.logger.Debug("socket registered", zap.String("game_id", gameID), zap.String("conn_id", connID))
	return connID
}

func (h *Hub) Unregister(gameID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[gameID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.games, gameID)
	}
	h.logger.Debug("socket unregistered", zap.String("game_id", gameID), zap.String("conn_id", connID))
}

// Connections returns how many sockets are open for gameID.
func (h *Hub) Connections(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Send writes msg to a single connection.
func (h *Hub) Send(gameID, connID string, msg Message) error {
	h.mu.RLock()
	c, ok := h.games[gameID][connID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.send(msg)
}

// Broadcast writes msg to every socket of gameID. A failed write drops the
// connection.
func (h *Hub) Broadcast(gameID string, msg Message) {
	// Copy under the read lock, write without it.
	h.mu.RLock()
	active := make(map[string]*client, len(h.games[gameID]))
	for id, c := range h.games[gameID] {
		active[id] = c
	}
	h.mu.RUnlock()

	for connID, c := range active {
		if err := c.send(msg); err != nil {
			h.logger.Warn("broadcast failed", zap.String("game_id", gameID), zap.String("conn_id", connID), zap.Error(err))
			h.Unregister(gameID, connID)
			c.conn.Close()
		}
	}
}

// GameUpdated implements service.Notifier.
func (h *Hub) GameUpdated(view service.GameView) {
	msg, err := NewMessage(MessageTypeGameState, view)
	if err != nil {
		h.logger.Error("marshal game state", zap.String("game_id", view.GameID), zap.Error(err))
		return
	}
	h.Broadcast(view.GameID, msg)
}
