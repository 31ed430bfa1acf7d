package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/trendqueue/internal/service"
	"github.com/maheshrc27/trendqueue/internal/transfer"
)

type QueueHandler struct {
	s  service.QueueService
	ps service.PostingService
}

func NewQueueHandler(service service.QueueService, posting service.PostingService) *QueueHandler {
	return &QueueHandler{s: service, ps: posting}
}

func (h *QueueHandler) Register(r fiber.Router) {
	r.Get("/queue", h.ListQueue)
	r.Get("/queue/status/:status", h.ListByStatus)
	r.Post("/queue/generate", h.Generate)
	r.Post("/queue/:id/approve", h.Approve)
	r.Post("/queue/:id/reject", h.Reject)
	r.Post("/queue/:id/post", h.Post)
	r.Get("/queue/:id/attempts", h.Attempts)
	r.Put("/queue/:id/media", h.UploadMedia)
}

func (h *QueueHandler) ListQueue(c *fiber.Ctx) error {
	videos, err := h.s.List(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(videos)
}

func (h *QueueHandler) ListByStatus(c *fiber.Ctx) error {
	videos, err := h.s.ListByStatus(c.Context(), c.Params("status"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(videos)
}

func (h *QueueHandler) Generate(c *fiber.Ctx) error {
	video, err := h.s.Generate(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.VideoResponse{
		Message: "Video generated from trending",
		Video:   video,
	})
}

func (h *QueueHandler) Approve(c *fiber.Ctx) error {
	video, err := h.s.Approve(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	slog.Info("review", "operator", GetOperator(c), "action", "approve", "video_id", video.ID)
	return c.Status(fiber.StatusOK).JSON(transfer.VideoResponse{
		Message: "Video approved",
		Video:   video,
	})
}

func (h *QueueHandler) Reject(c *fiber.Ctx) error {
	// an unreadable body means no reason was given
	var req transfer.RejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			req = transfer.RejectRequest{}
		}
	}

	video, err := h.s.Reject(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	slog.Info("review", "operator", GetOperator(c), "action", "reject", "video_id", video.ID)
	return c.Status(fiber.StatusOK).JSON(transfer.VideoResponse{
		Message: "Video rejected",
		Video:   video,
	})
}

func (h *QueueHandler) Post(c *fiber.Ctx) error {
	video, err := h.ps.PostVideo(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.VideoResponse{
		Message: "Video posted",
		Video:   video,
	})
}

func (h *QueueHandler) Attempts(c *fiber.Ctx) error {
	attempts, err := h.ps.Attempts(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(attempts)
}

func (h *QueueHandler) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}

	video, err := h.s.AttachMedia(c.Context(), c.Params("id"), data)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.VideoResponse{
		Message: "Media uploaded",
		Video:   video,
	})
}
