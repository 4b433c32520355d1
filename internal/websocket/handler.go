package websocket

import (
	"context"
	"encoding/json"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/pkg/store"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs the session loop for sessionID on conn and returns once the
// peer disconnects. Session state lives exactly as long as the connection.
func ServeWs(hub *Hub, conn Conn, sessionID string) {
	state, err := hub.sessions.Open(sessionID)
	if err != nil {
		hub.logger.Warn("WS", "Refusing second connection", map[string]interface{}{"session_id": sessionID})
		refuse(conn, sessionID)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:       hub,
		conn:      conn,
		sessionID: sessionID,
		state:     state,
		send:      make(chan []byte, sendBuffer),
		cancel:    cancel,
	}
	hub.register(client)
	defer func() {
		cancel()
		hub.unregister(client)
		hub.sessions.Close(state)
	}()

	go client.writePump()

	client.emit(dto.StreamEvent{Type: dto.EventConnected, Message: MsgWelcome})
	_ = state.Transition(store.SessionIdle)

	client.readPump(ctx)
}

func refuse(conn Conn, sessionID string) {
	data, _ := json.Marshal(dto.StreamEvent{
		Type:      dto.EventError,
		SessionId: sessionID,
		Message:   MsgSessionActive,
	})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.TextMessage, data)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session already connected"))
	conn.Close()
}
