package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// usernameLocal is set by the JWT middleware from the token subject.
const usernameLocal = "username"

// UpgradeMiddleware rejects plain HTTP requests and callers whose token names no user.
// It must run after the JWT middleware.
func UpgradeMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		if username, _ := ctx.Locals(usernameLocal).(string); username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "token has no subject")
		}
		return ctx.Next()
	}
}

// Handler serves one connection for the lifetime of the socket.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		username, _ := conn.Locals(usernameLocal).(string)
		client := NewClient(hub, conn, username)
		hub.Register(client)

		go client.writePump()
		client.readPump()
	})
}
