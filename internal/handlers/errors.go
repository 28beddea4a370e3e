package handlers

import (
	"errors"

	"duka/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto an HTTP response, preserving the
// originating message so the caller can present an actionable reason.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusInternalServerError

	var validationErr *apperrors.ValidationError
	var upstreamErr *apperrors.UpstreamError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &upstreamErr):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// respondValidationErrors renders validator.v10 struct violations as a
// field-keyed map.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = "failed on the '" + e.Tag() + "' tag"
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
