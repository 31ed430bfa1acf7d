package job

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/trendqueue/internal/service"
)

// tokenRefreshWindow is how close to expiry a token gets renewed.
const tokenRefreshWindow = 30 * time.Minute

type TokenRefreshJob struct {
	tt  service.TiktokService
	now func() time.Time
}

func NewTokenRefreshJob(tt service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{tt: tt, now: time.Now}
}

func (c *TokenRefreshJob) RefreshTokens() {
	if c.tt == nil || !c.tt.Configured() {
		return
	}

	expiresAt := c.tt.TokenExpiresAt()
	if !expiresAt.IsZero() && expiresAt.After(c.now().Add(tokenRefreshWindow)) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := c.tt.RefreshToken(ctx); err != nil {
		if errors.Is(err, service.ErrPlatformNotConfigured) {
			return
		}
		slog.Info("Unable to refresh tokens for TikTok", "error", err)
	}
}
