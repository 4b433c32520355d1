package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionHeader   = "X-Session-ID"
	SessionLocalKey = "session_id"
)

// SessionMiddleware passes the caller's session id through to handlers. It is
// the only identity this service knows about; a missing header gets a fresh id.
func SessionMiddleware(ctx *fiber.Ctx) error {
	sessionID := ctx.Get(SessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx.Locals(SessionLocalKey, sessionID)
	ctx.Set(SessionHeader, sessionID)
	return ctx.Next()
}

// SessionID returns the id stored by SessionMiddleware, or "".
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(SessionLocalKey).(string)
	return id
}
