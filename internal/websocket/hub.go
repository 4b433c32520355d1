package websocket

import (
	"context"
	"sync"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/session"
	"juris-rag-be/pkg/store"
)

// Answerer runs one question for a live session.
type Answerer interface {
	Answer(ctx context.Context, sessionID, text string, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error)
}

// Hub tracks live connections by session id.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	sessions *session.Manager
	answerer Answerer
	logger   logger.ILogger
}

func NewHub(sessions *session.Manager, answerer Answerer, log logger.ILogger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		sessions: sessions,
		answerer: answerer,
		logger:   log,
	}
}

// register makes c the connection for its session id. A previous connection
// whose state expired and was replaced is closed so it cannot linger unreachable.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	stale, replaced := h.clients[c.sessionID]
	h.clients[c.sessionID] = c
	h.mu.Unlock()

	if replaced && stale != c {
		h.logger.Warn("Hub", "Closing connection of expired session", map[string]interface{}{"session_id": c.sessionID})
		stale.cancel()
		stale.conn.Close()
	}
	h.logger.Info("Hub", "Session connected", map[string]interface{}{"session_id": c.sessionID})
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.sessionID]; ok && current == c {
		delete(h.clients, c.sessionID)
	}
	h.mu.Unlock()
	close(c.send)
	h.logger.Info("Hub", "Session disconnected", map[string]interface{}{"session_id": c.sessionID})
}

// Disconnect closes the connection of sessionID, if any. The session loop
// then cleans up as for a normal disconnect.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.RLock()
	c, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.cancel()
	c.conn.Close()
}

// Evict closes the connection holding state, if it is still connected.
// A newer connection that reused the id is left alone.
func (h *Hub) Evict(state *store.SessionState) {
	h.mu.RLock()
	c, ok := h.clients[state.ID]
	h.mu.RUnlock()
	if !ok || c.state != state {
		return
	}
	h.logger.Info("Hub", "Session expired", map[string]interface{}{"session_id": state.ID})
	c.cancel()
	c.conn.Close()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects every live session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}
