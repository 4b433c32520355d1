package handler

import (
	"strings"

	"juris-rag-be/internal/pkg/logger"
	internalWS "juris-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const maxSessionIDLength = 128

type SessionHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSessionHandler(hub *internalWS.Hub, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request and runs the session keyed by :session_id.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" || len(sessionID) > maxSessionIDLength {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Health reports live session count.
func (h *SessionHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"active_sessions": h.hub.Count(),
	})
}

func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/legal/v1/health", h.Health)
	router.Get("/legal/v1/ws/:session_id", h.ServeWs)
}
