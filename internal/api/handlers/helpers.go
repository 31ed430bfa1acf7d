package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/trendqueue/internal/repository"
	"github.com/maheshrc27/trendqueue/internal/service"
)

// errorResponse maps service and repository errors to a status code and the
// JSON error body.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, message = fiber.StatusNotFound, "Video not found"
	case errors.Is(err, service.ErrInvalidTransition):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidSlot), errors.Is(err, service.ErrUnsupportedMedia):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrNoCandidates):
		message = "No trending videos found"
	case errors.Is(err, service.ErrPlatformNotConfigured):
		status = fiber.StatusServiceUnavailable
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

func GetOperator(c *fiber.Ctx) string {
	operator, _ := c.Locals("operator").(string)
	if operator == "" {
		return "anonymous"
	}
	return operator
}
