package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/trendqueue/internal/service"
)

type TrendingHandler struct {
	s service.TrendingService
}

func NewTrendingHandler(service service.TrendingService) *TrendingHandler {
	return &TrendingHandler{s: service}
}

func (h *TrendingHandler) Register(r fiber.Router) {
	r.Get("/trending", h.ListTrending)
	r.Get("/trending/search", h.SearchShorts)
}

func (h *TrendingHandler) ListTrending(c *fiber.Ctx) error {
	if h.s.Len() == 0 {
		if err := h.s.Refresh(c.Context()); err != nil {
			return upstreamError(c, err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(h.s.Get())
}

func (h *TrendingHandler) SearchShorts(c *fiber.Ctx) error {
	videos, err := h.s.Search(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(videos)
}

func upstreamError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrPlatformNotConfigured) {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": err.Error(),
	})
}
