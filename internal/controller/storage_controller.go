package controller

import (
	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStorageController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	SetupVectorStore(ctx *fiber.Ctx) error
	GenerateSignedUrl(ctx *fiber.Ctx) error
	CreateFolders(ctx *fiber.Ctx) error
	DeleteFiles(ctx *fiber.Ctx) error
	ListFiles(ctx *fiber.Ctx) error
}

type storageController struct {
	storageService service.IStorageService
}

func NewStorageController(storageService service.IStorageService) IStorageController {
	return &storageController{storageService: storageService}
}

func (c *storageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/storage")
	h.Post("/upload", c.Upload)
	h.Post("/setupVectorStore", c.SetupVectorStore)
	h.Post("/generateSignedUrl", c.GenerateSignedUrl)
	h.Post("/folders", c.CreateFolders)
	h.Delete("/file", c.DeleteFiles)
	h.Get("/files", c.ListFiles)
}

func (c *storageController) Upload(ctx *fiber.Ctx) error {
	var req dto.StorageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storageService.Upload(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *storageController) SetupVectorStore(ctx *fiber.Ctx) error {
	var req dto.StorageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storageService.SetupVectorStore(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *storageController) GenerateSignedUrl(ctx *fiber.Ctx) error {
	var req dto.SignedUrlRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storageService.GenerateSignedUrl(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate signed url", res))
}

func (c *storageController) CreateFolders(ctx *fiber.Ctx) error {
	var req dto.StorageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storageService.CreateFolders(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *storageController) DeleteFiles(ctx *fiber.Ctx) error {
	var req dto.DeleteFileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.storageService.DeleteFiles(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete files", res))
}

func (c *storageController) ListFiles(ctx *fiber.Ctx) error {
	res, err := c.storageService.ListFiles(ctx.UserContext(), ctx.Query("user_id"), ctx.Query("username"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list files", res))
}
