package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/apperr"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindCapacity, apperr.KindDuplicate, apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the API error shape. Errors outside the domain taxonomy
// are logged and reported with fallback as the message.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body := fiber.Map{
			"message": appErr.Message,
			"error":   appErr.Kind.String(),
		}
		if len(appErr.Violations) > 0 {
			body["violations"] = appErr.Violations
		}
		if appErr.Redirect != "" {
			body["redirect"] = appErr.Redirect
		}
		logger.Debug("request rejected", zap.String("path", c.Path()), zap.Stringer("kind", appErr.Kind), zap.Error(err))
		return c.Status(statusFor(appErr.Kind)).JSON(body)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"message": "Request was cancelled",
			"error":   err.Error(),
		})
	}

	logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fallback,
		"error":   err.Error(),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// intParam reads a positive integer path parameter.
func intParam(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid "+name, apperr.Violation{
			Field: name, Rule: "numeric", Message: name + " must be a positive integer",
		})
	}
	return id, nil
}
