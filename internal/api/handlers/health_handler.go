package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/trendqueue/internal/service"
	"github.com/maheshrc27/trendqueue/internal/transfer"
)

type HealthHandler struct {
	qs       service.QueueService
	ts       service.TrendingService
	selector *service.Selector
	yt       service.YoutubeService
	tt       service.TiktokService
}

func NewHealthHandler(
	qs service.QueueService,
	ts service.TrendingService,
	selector *service.Selector,
	yt service.YoutubeService,
	tt service.TiktokService) *HealthHandler {
	return &HealthHandler{qs: qs, ts: ts, selector: selector, yt: yt, tt: tt}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := transfer.HealthResponse{
		Status:           "ok",
		YoutubeConnected: h.yt != nil && h.yt.DiscoveryConfigured(),
		TiktokConnected:  h.tt != nil && h.tt.Configured(),
		TrendingCached:   h.ts.Len(),
		UsedVideos:       h.selector.UsedCount(),
	}

	count, err := h.qs.Count(c.Context())
	if err != nil {
		resp.Status = "degraded"
	}
	resp.Videos = count

	if refreshed := h.ts.LastRefreshed(); !refreshed.IsZero() {
		resp.LastRefreshed = refreshed.UTC().Format(time.RFC3339)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
