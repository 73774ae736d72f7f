package serverutils

import (
	"errors"

	"github.com/PinsaraPerera/intellihack-backend/pkg/agent"
	"github.com/PinsaraPerera/intellihack-backend/pkg/generator"
	"github.com/PinsaraPerera/intellihack-backend/pkg/ingest"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
)

// ErrNotFound is the generic "nothing to return" error used by services.
var ErrNotFound = errors.New("not found")

// StatusFromError maps domain errors to HTTP status codes.
func StatusFromError(err error) int {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, vectorstore.ErrInvalidSession),
		errors.Is(err, vectorstore.ErrInvalidUser),
		errors.Is(err, storage.ErrInvalidPath):
		return fiber.StatusBadRequest
	case errors.Is(err, vectorstore.ErrNotFound),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ingest.ErrNoDocuments),
		errors.Is(err, generator.ErrEmptyResponse),
		errors.Is(err, agent.ErrEmptyResponse):
		return fiber.StatusNotFound
	case errors.Is(err, vectorstore.ErrCorrupt):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, vectorstore.ErrDurableStoreUnavailable),
		errors.Is(err, vectorstore.ErrCacheUnavailable),
		errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, agent.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware renders any error returned further down the chain as a Response.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFromError(err)
		resp := ErrorResponse(code, err.Error())
		var ve *ValidationError
		if errors.As(err, &ve) {
			resp.Message = "validation failed"
			resp.Errors = ve.Fields
		}
		if code == fiber.StatusInternalServerError {
			resp.Message = "internal server error"
		}
		return ctx.Status(code).JSON(resp)
	}
}
