package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type PostingService interface {
	PostApproved(ctx context.Context, slot models.Slot) (*PostingSummary, error)
	PostVideo(ctx context.Context, id string) (*models.Video, error)
	Attempts(ctx context.Context, id string) ([]*models.PublishAttempt, error)
}

type PostingSummary struct {
	Slot      models.Slot `json:"slot"`
	Processed int         `json:"processed"`
	Posted    int         `json:"posted"`
	Failed    int         `json:"failed"`
}

type PostingOptions struct {
	Tags    []string
	Privacy string
}

type postingService struct {
	vr         repository.VideoRepository
	ar         repository.PublishAttemptRepository
	media      MediaStore
	publishers []Publisher
	opts       PostingOptions

	now func() time.Time
}

func NewPostingService(
	vr repository.VideoRepository,
	ar repository.PublishAttemptRepository,
	media MediaStore,
	publishers []Publisher,
	opts PostingOptions) PostingService {
	if opts.Tags == nil {
		opts.Tags = DefaultTags
	}
	if opts.Privacy == "" {
		opts.Privacy = "public"
	}
	return &postingService{
		vr:         vr,
		ar:         ar,
		media:      media,
		publishers: publishers,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PostApproved publishes every approved record scheduled for slot, one after
// the other. A failure on one record never stops the pass.
func (s *postingService) PostApproved(ctx context.Context, slot models.Slot) (*PostingSummary, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%q: %w", slot, ErrInvalidSlot)
	}

	videos, err := s.vr.ListByStatusAndSlot(ctx, models.VideoStatusApproved, slot)
	if err != nil {
		return nil, fmt.Errorf("error listing approved videos: %w", err)
	}

	summary := &PostingSummary{Slot: slot}
	if len(videos) == 0 {
		slog.Info("no approved videos for slot", "slot", slot)
		return summary, nil
	}

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Processed++
		if err := s.post(ctx, video); err != nil {
			summary.Failed++
			slog.Error("error posting video", "video_id", video.ID, "slot", slot, "error", err)
			continue
		}
		summary.Posted++
	}

	slog.Info("posting pass finished", "slot", slot, "processed", summary.Processed, "posted", summary.Posted, "failed", summary.Failed)
	return summary, nil
}

func (s *postingService) PostVideo(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.vr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Status != models.VideoStatusApproved {
		return nil, fmt.Errorf("cannot post %s video: %w", video.Status, ErrInvalidTransition)
	}

	if err := s.post(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *postingService) Attempts(ctx context.Context, id string) ([]*models.PublishAttempt, error) {
	if _, err := s.vr.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ar.ListByVideoID(ctx, id)
}

// post tries every platform independently, then marks the record posted
// whatever the individual outcomes were. A record rejected while the uploads
// ran stays rejected.
func (s *postingService) post(ctx context.Context, video *models.Video) error {
	req := PublishRequest{
		Title:       video.Title,
		Description: video.Description,
		Tags:        s.opts.Tags,
		Privacy:     s.opts.Privacy,
	}

	for _, p := range s.publishers {
		externalID, err := s.publish(ctx, p, video, req)
		s.recordAttempt(ctx, video.ID, p.Platform(), externalID, err)
		if err != nil {
			continue
		}

		switch p.Platform() {
		case models.PlatformYoutube:
			video.YoutubeID = externalID
		case models.PlatformTiktok:
			video.TiktokID = externalID
		}
	}

	now := s.now()
	video.Status = models.VideoStatusPosted
	video.PostedAt = &now

	if err := updateStatus(ctx, s.vr, video, models.VideoStatusApproved); err != nil {
		return fmt.Errorf("error updating video %s: %w", video.ID, err)
	}

	slog.Info("video posted", "video_id", video.ID, "title", video.Title, "youtube_id", video.YoutubeID, "tiktok_id", video.TiktokID)
	return nil
}

func (s *postingService) publish(ctx context.Context, p Publisher, video *models.Video, req PublishRequest) (string, error) {
	if !p.Configured() {
		slog.Info("platform not configured, skipping", "platform", p.Platform(), "video_id", video.ID)
		return "", fmt.Errorf("%s: %w", p.Platform(), ErrPlatformNotConfigured)
	}
	if s.media == nil {
		return "", ErrMediaNotFound
	}

	file, size, err := s.media.Open(ctx, video.VideoPath)
	if err != nil {
		if errors.Is(err, ErrMediaNotFound) {
			slog.Warn("video file not found, skipping upload", "platform", p.Platform(), "video_id", video.ID, "key", video.VideoPath)
		} else {
			slog.Error("error opening video file", "platform", p.Platform(), "video_id", video.ID, "error", err)
		}
		return "", err
	}
	defer file.Close()

	media, err := sniffVideo(file)
	if err != nil {
		slog.Warn("media rejected", "platform", p.Platform(), "video_id", video.ID, "error", err)
		return "", err
	}

	externalID, err := p.Publish(ctx, media, size, req)
	if err != nil {
		slog.Error("error publishing video", "platform", p.Platform(), "video_id", video.ID, "error", err)
		return "", err
	}
	return externalID, nil
}

func (s *postingService) recordAttempt(ctx context.Context, videoID, platform, externalID string, publishErr error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Error("error generating attempt id", "error", err)
		return
	}

	attempt := models.PublishAttempt{
		ID:         id,
		VideoID:    videoID,
		Platform:   platform,
		ExternalID: externalID,
		CreatedAt:  s.now(),
	}
	if publishErr != nil {
		attempt.ErrorMessage = publishErr.Error()
	}

	if err := s.ar.Create(ctx, &attempt); err != nil {
		slog.Error("error saving publish attempt", "video_id", videoID, "platform", platform, "error", err)
	}
}
