package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper translates domain errors into HTTP status codes; ok=false passes the error on
type StatusMapper func(err error) (status int, ok bool)

var statusMappers []StatusMapper

// RegisterStatusMapper lets domain packages teach the error handler about their sentinel errors
func RegisterStatusMapper(m StatusMapper) {
	statusMappers = append(statusMappers, m)
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON envelope
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
		return ctx.Status(fiber.StatusBadRequest).JSON(
			ErrorResponseWithData(fiber.StatusBadRequest, "Invalid request", validationErr.Fields))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	for _, m := range statusMappers {
		if status, ok := m(err); ok {
			return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
		}
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(
		ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
}
