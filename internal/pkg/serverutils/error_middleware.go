package serverutils

import (
	"errors"

	"juris-rag-be/internal/repository/contract"
	"juris-rag-be/pkg/rag/feedback"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

func WriteError(ctx *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse(validationErr.Fields))
	}

	status, message := StatusFor(err)
	return ctx.Status(status).JSON(ErrorResponse(status, message))
}

// StatusFor maps domain errors to an HTTP status and a client-safe message.
func StatusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, contract.ErrRecordNotFound):
		return fiber.StatusNotFound, "Query record not found"
	case errors.Is(err, feedback.ErrInvalidFeedback):
		return fiber.StatusBadRequest, err.Error()
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
