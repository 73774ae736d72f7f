package controller

import (
	"github.com/PinsaraPerera/intellihack-backend/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
}

type notificationController struct {
	hub *websocket.Hub
}

func NewNotificationController(hub *websocket.Hub) INotificationController {
	return &notificationController{hub: hub}
}

// RegisterRoutes exposes GET /ws/notifications?access_token=<jwt>. The socket receives
// VECTORSTORE_READY and VECTORSTORE_FAILED events for the token's subject.
func (c *notificationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	ws := r.Group("/ws", auth, websocket.UpgradeMiddleware())
	ws.Get("/notifications", websocket.Handler(c.hub))
}
