package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/repository"
)

var (
	ErrNoCandidates          = errors.New("no trending videos found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrInvalidSlot           = errors.New("invalid posting slot")
	ErrPlatformNotConfigured = errors.New("platform is not configured")
	ErrMediaNotFound         = errors.New("media not found")
	ErrUnsupportedMedia      = errors.New("media is not a supported video")
)

// updateStatus persists video if its stored status is still from. A record
// moved by a concurrent writer surfaces as ErrInvalidTransition.
func updateStatus(ctx context.Context, vr repository.VideoRepository, video *models.Video, from models.VideoStatus) error {
	err := vr.Update(ctx, video, from)
	if errors.Is(err, repository.ErrStatusChanged) {
		return fmt.Errorf("video %s is no longer %s: %w", video.ID, from, ErrInvalidTransition)
	}
	return err
}
