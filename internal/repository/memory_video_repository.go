package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/maheshrc27/trendqueue/internal/models"
)

// memoryVideoRepository keeps records in process memory. Everything it hands
// out is a copy.
type memoryVideoRepository struct {
	mu     sync.RWMutex
	videos []*models.Video
	byID   map[string]int
}

func NewMemoryVideoRepository() VideoRepository {
	return &memoryVideoRepository{byID: make(map[string]int)}
}

func (r *memoryVideoRepository) Create(ctx context.Context, video *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[video.ID]; ok {
		return fmt.Errorf("video %s already exists", video.ID)
	}
	r.byID[video.ID] = len(r.videos)
	r.videos = append(r.videos, video.Clone())
	return nil
}

func (r *memoryVideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.videos[i].Clone(), nil
}

func (r *memoryVideoRepository) List(ctx context.Context) ([]*models.Video, error) {
	return r.filter(func(*models.Video) bool { return true }, newestFirst), nil
}

func (r *memoryVideoRepository) ListByStatus(ctx context.Context, status models.VideoStatus) ([]*models.Video, error) {
	return r.filter(func(v *models.Video) bool { return v.Status == status }, newestFirst), nil
}

func (r *memoryVideoRepository) ListByStatusAndSlot(ctx context.Context, status models.VideoStatus, slot models.Slot) ([]*models.Video, error) {
	return r.filter(func(v *models.Video) bool {
		return v.Status == status && v.ScheduledPost == slot
	}, oldestFirst), nil
}

func (r *memoryVideoRepository) Update(ctx context.Context, video *models.Video, from models.VideoStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[video.ID]
	if !ok {
		return ErrNotFound
	}
	if r.videos[i].Status != from {
		return ErrStatusChanged
	}

	// only the mutable fields change, mirroring the SQL UPDATE
	stored := r.videos[i].Clone()
	stored.Status = video.Status
	stored.YoutubeID = video.YoutubeID
	stored.TiktokID = video.TiktokID
	stored.Notes = video.Notes
	stored.ApprovedAt = video.Clone().ApprovedAt
	stored.PostedAt = video.Clone().PostedAt
	r.videos[i] = stored
	return nil
}

func (r *memoryVideoRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.videos), nil
}

func (r *memoryVideoRepository) filter(keep func(*models.Video) bool, less func(a, b *models.Video) bool) []*models.Video {
	r.mu.RLock()
	defer r.mu.RUnlock()

	videos := []*models.Video{}
	for _, v := range r.videos {
		if keep(v) {
			videos = append(videos, v.Clone())
		}
	}
	sort.SliceStable(videos, func(i, j int) bool { return less(videos[i], videos[j]) })
	return videos
}

func newestFirst(a, b *models.Video) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func oldestFirst(a, b *models.Video) bool {
	return newestFirst(b, a)
}
