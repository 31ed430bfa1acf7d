package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/trendqueue/internal/service"
)

type TrendingRefreshJob struct {
	ts service.TrendingService
}

func NewTrendingRefreshJob(ts service.TrendingService) *TrendingRefreshJob {
	return &TrendingRefreshJob{ts: ts}
}

// Refresh reloads the trending cache. Failures keep the previous cache.
func (j *TrendingRefreshJob) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := j.ts.Refresh(ctx); err != nil {
		slog.Warn("scheduled trending refresh failed", "error", err)
		return
	}
	slog.Info("trending cache refreshed", "count", j.ts.Len())
}
