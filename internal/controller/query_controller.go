package controller

import (
	"strconv"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	Graph(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
	SummaryGraph(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Quiz(ctx *fiber.Ctx) error
	Research(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/query")
	h.Post("/chat", c.Chat)
	h.Post("/graph", c.Graph)
	h.Post("/summary", c.Summary)
	h.Post("/summary-graph", c.SummaryGraph)
	h.Post("/quiz", c.Quiz)
	h.Post("/research", c.Research)
	h.Get("/history/:user_id/:limit", auth, c.History)
}

func (c *queryController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Chat(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *queryController) Graph(ctx *fiber.Ctx) error {
	var req dto.GraphRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Graph(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate graph", res))
}

func (c *queryController) Summary(ctx *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Summary(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate summary", res))
}

func (c *queryController) SummaryGraph(ctx *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.SummaryGraph(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate summary and graph", res))
}

func (c *queryController) History(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	limit, err := strconv.Atoi(ctx.Params("limit"))
	if err != nil || limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}

	res, err := c.queryService.History(ctx.UserContext(), userId, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *queryController) Quiz(ctx *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Quiz(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create quiz", res))
}

func (c *queryController) Research(ctx *fiber.Ctx) error {
	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.queryService.Research(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success research", res))
}
