package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/service"
)

type PostingHandler struct {
	s service.PostingService
}

func NewPostingHandler(service service.PostingService) *PostingHandler {
	return &PostingHandler{s: service}
}

func (h *PostingHandler) Register(r fiber.Router) {
	r.Post("/posting/:slot", h.RunSlot)
}

// RunSlot runs a posting pass for the slot right away, outside the schedule.
func (h *PostingHandler) RunSlot(c *fiber.Ctx) error {
	summary, err := h.s.PostApproved(c.Context(), models.Slot(c.Params("slot")))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
