package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/repository"
	"github.com/maheshrc27/trendqueue/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const DefaultRejectReason = "Rejected by admin"

type QueueService interface {
	Generate(ctx context.Context) (*models.Video, error)
	Enqueue(ctx context.Context, candidate models.TrendingVideo) (*models.Video, error)
	List(ctx context.Context) ([]*models.Video, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Video, error)
	Get(ctx context.Context, id string) (*models.Video, error)
	Approve(ctx context.Context, id string) (*models.Video, error)
	Reject(ctx context.Context, id, reason string) (*models.Video, error)
	AttachMedia(ctx context.Context, id string, data []byte) (*models.Video, error)
	Count(ctx context.Context) (int, error)
}

type QueueOptions struct {
	TitlePrefix      string
	DescriptionLimit int
}

type queueService struct {
	vr       repository.VideoRepository
	trending TrendingService
	selector *Selector
	media    MediaStore
	opts     QueueOptions

	now   func() time.Time
	intn  func(n int) int
	newID func() (string, error)
}

func NewQueueService(
	vr repository.VideoRepository,
	trending TrendingService,
	selector *Selector,
	media MediaStore,
	opts QueueOptions) QueueService {
	if opts.DescriptionLimit <= 0 {
		opts.DescriptionLimit = 150
	}
	return &queueService{
		vr:       vr,
		trending: trending,
		selector: selector,
		media:    media,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		intn:     rand.IntN,
		newID:    func() (string, error) { return gonanoid.New() },
	}
}

// Generate refreshes the trending cache when it is empty, picks an unused
// candidate and queues it.
func (s *queueService) Generate(ctx context.Context) (*models.Video, error) {
	if s.trending.Len() == 0 {
		if err := s.trending.Refresh(ctx); err != nil {
			slog.Warn("trending refresh before generation failed", "error", err)
		}
	}

	candidates := s.trending.Get()
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	candidate, err := s.selector.SelectUnused(candidates)
	if err != nil {
		return nil, err
	}

	return s.Enqueue(ctx, candidate)
}

func (s *queueService) Enqueue(ctx context.Context, candidate models.TrendingVideo) (*models.Video, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating video id: %w", err)
	}

	video := &models.Video{
		ID:               id,
		Title:            s.opts.TitlePrefix + candidate.Title,
		Description:      utils.Truncate(candidate.Description, s.opts.DescriptionLimit),
		ThumbnailURL:     candidate.Thumbnail,
		VideoPath:        id + ".mp4",
		SourceTrending:   true,
		SourceTrendingID: candidate.ID,
		Status:           models.VideoStatusQueued,
		ScheduledPost:    models.Slots[s.intn(len(models.Slots))],
		CreatedAt:        s.now(),
	}

	if err := s.vr.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("error creating video: %w", err)
	}

	slog.Info("generated video from trending", "video_id", video.ID, "title", video.Title, "slot", video.ScheduledPost)
	return video, nil
}

func (s *queueService) List(ctx context.Context) ([]*models.Video, error) {
	return s.vr.List(ctx)
}

func (s *queueService) ListByStatus(ctx context.Context, status string) ([]*models.Video, error) {
	return s.vr.ListByStatus(ctx, models.VideoStatus(status))
}

func (s *queueService) Get(ctx context.Context, id string) (*models.Video, error) {
	return s.vr.GetByID(ctx, id)
}

// Approve moves a queued record to approved. Approving an approved record is
// a no-op; posted and rejected records are final.
func (s *queueService) Approve(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.vr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch video.Status {
	case models.VideoStatusApproved:
		return video, nil
	case models.VideoStatusQueued:
	default:
		return nil, fmt.Errorf("cannot approve %s video: %w", video.Status, ErrInvalidTransition)
	}

	now := s.now()
	video.Status = models.VideoStatusApproved
	video.ApprovedAt = &now

	if err := updateStatus(ctx, s.vr, video, models.VideoStatusQueued); err != nil {
		return nil, err
	}

	slog.Info("video approved", "video_id", id, "slot", video.ScheduledPost)
	return video, nil
}

// Reject accepts queued and approved records. An empty reason is replaced by
// DefaultRejectReason.
func (s *queueService) Reject(ctx context.Context, id, reason string) (*models.Video, error) {
	video, err := s.vr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if video.Status.Terminal() {
		return nil, fmt.Errorf("cannot reject %s video: %w", video.Status, ErrInvalidTransition)
	}

	if reason == "" {
		reason = DefaultRejectReason
	}
	from := video.Status
	video.Status = models.VideoStatusRejected
	video.Notes = reason

	if err := updateStatus(ctx, s.vr, video, from); err != nil {
		return nil, err
	}

	slog.Info("video rejected", "video_id", id, "reason", reason)
	return video, nil
}

// AttachMedia stores the rendered file a record will be published from.
func (s *queueService) AttachMedia(ctx context.Context, id string, data []byte) (*models.Video, error) {
	video, err := s.vr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Status.Terminal() {
		return nil, fmt.Errorf("cannot attach media to %s video: %w", video.Status, ErrInvalidTransition)
	}
	if s.media == nil {
		return nil, errors.New("no media store configured")
	}

	mime, err := DetectVideo(data)
	if err != nil {
		return nil, err
	}

	if err := s.media.Save(ctx, video.VideoPath, data, mime); err != nil {
		return nil, fmt.Errorf("error uploading media: %w", err)
	}

	slog.Info("media attached", "video_id", id, "key", video.VideoPath, "mime", mime, "size", len(data))
	return video, nil
}

func (s *queueService) Count(ctx context.Context) (int, error) {
	return s.vr.Count(ctx)
}
