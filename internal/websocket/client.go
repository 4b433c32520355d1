package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/store"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
)

// Conn is the part of *websocket.Conn a session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live session connection. All events are produced on the
// reader goroutine; writePump is the only writer to Conn.
type Client struct {
	hub       *Hub
	conn      Conn
	sessionID string
	state     *store.SessionState
	send      chan []byte
	cancel    context.CancelFunc
}

func (c *Client) emit(event dto.StreamEvent) {
	event.SessionId = c.sessionID
	data, err := json.Marshal(event)
	if err != nil {
		c.hub.logger.Error("WS", "Failed to encode event", map[string]interface{}{
			"session_id": c.sessionID,
			"type":       event.Type,
			"error":      err.Error(),
		})
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("WS", "Send buffer full, dropping event", map[string]interface{}{
			"session_id": c.sessionID,
			"type":       event.Type,
		})
	}
}

func (c *Client) emitError(message string) {
	c.emit(dto.StreamEvent{Type: dto.EventError, Message: message})
}

// readPump handles inbound frames one at a time until the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		// A quiet but live peer keeps its session from expiring.
		c.hub.sessions.Touch(c.state)
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("WS", "Connection dropped", map[string]interface{}{
					"session_id": c.sessionID,
					"error":      err.Error(),
				})
			}
			return
		}
		c.hub.sessions.Touch(c.state)

		var frame dto.InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.emitError(MsgInvalidFrame)
			continue
		}

		switch frame.Type {
		case dto.InboundPing:
			c.emit(dto.StreamEvent{Type: dto.EventPong})
		case dto.InboundMessage:
			c.handleMessage(ctx, frame.Content)
			// A long answer can outlive the previous deadline.
			c.conn.SetReadDeadline(time.Now().Add(pongWait))
		default:
			c.emitError(MsgUnsupportedFrame)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, content string) {
	text := strings.TrimSpace(content)
	if text == "" {
		c.emitError(MsgEmptyMessage)
		return
	}

	if err := c.state.Transition(store.SessionProcessing); err != nil {
		c.emitError(MsgBusy)
		return
	}

	res, err := c.hub.answerer.Answer(ctx, c.sessionID, text, c.state.History(), func(stage pipeline.Stage) {
		c.emit(dto.StreamEvent{Type: dto.EventStatus, Stage: string(stage), Message: stageMessages[stage]})
	})
	if err != nil {
		c.hub.logger.Error("WS", "Query failed", map[string]interface{}{
			"session_id": c.sessionID,
			"error":      err.Error(),
		})
		_ = c.state.Transition(store.SessionIdle)
		c.emitError(MsgQueryFailed)
		return
	}

	c.hub.sessions.Record(c.state, text, res.Answer)
	_ = c.state.Transition(store.SessionIdle)
	c.emit(dto.StreamEvent{Type: dto.EventAnswer, Data: res})
}

// writePump drains send and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		// Unblocks an in-flight answer when the peer is gone.
		c.cancel()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
