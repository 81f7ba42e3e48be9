package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rag-chatbot-be/internal/apperr"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// JSON envelope with the right HTTP status.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(statusFor(err)).JSON(ErrorResponse(err.Error()))
	}
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
