package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidReference), errors.Is(err, domain.ErrUnknownLocation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoRouteFound), errors.Is(err, domain.ErrAlreadyExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler writes {"error": "..."} with the mapped status. Internal
// errors are logged and their detail hidden from the client.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		msg := err.Error()
		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("request_id", requestIDOf(c)),
			)
			msg = "internal error"
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

// badRequest wraps a body or parameter parse failure.
func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid request: "+err.Error())
}
