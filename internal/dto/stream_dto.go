package dto

// Inbound frame types.
const (
	InboundMessage = "message"
	InboundPing    = "ping"
)

// Outbound event types.
const (
	EventConnected = "connected"
	EventStatus    = "status"
	EventAnswer    = "answer"
	EventError     = "error"
	EventPong      = "pong"
)

type InboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type StreamEvent struct {
	Type      string      `json:"type"`
	SessionId string      `json:"session_id"`
	Stage     string      `json:"stage,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
