package serverutils

import (
	"errors"

	"ai-studyroom-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain sentinel errors to HTTP statuses so
// controllers can just return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperr.ErrAuthentication):
			status = fiber.StatusUnauthorized
		case errors.Is(err, apperr.ErrMembership):
			status = fiber.StatusForbidden
		case errors.Is(err, apperr.ErrValidation),
			errors.Is(err, apperr.ErrUnsupportedFormat),
			errors.Is(err, apperr.ErrExtractionFailed):
			status = fiber.StatusBadRequest
		case errors.Is(err, apperr.ErrDownstream):
			status = fiber.StatusBadGateway
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
}
