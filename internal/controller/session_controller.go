package controller

import (
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Clear(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{sessionService: sessionService}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session")
	h.Get("", c.State)
	h.Delete("", c.Clear)
}

// Clear drops the caller's cached vector store. Clearing an empty session is not an error.
func (c *sessionController) Clear(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Clear(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear session", res))
}

func (c *sessionController) State(ctx *fiber.Ctx) error {
	res, err := c.sessionService.State(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session state", res))
}
