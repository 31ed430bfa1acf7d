package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/trendqueue/internal/models"
)

// TrendingSource is the external discovery provider.
type TrendingSource interface {
	FetchTrending(ctx context.Context, region string, maxResults int64) ([]models.TrendingVideo, error)
	SearchShorts(ctx context.Context, maxResults int64) ([]models.TrendingVideo, error)
}

type TrendingService interface {
	Refresh(ctx context.Context) error
	Get() []models.TrendingVideo
	Len() int
	LastRefreshed() time.Time
	Search(ctx context.Context) ([]models.TrendingVideo, error)
}

const searchMaxResults = 30

type trendingService struct {
	source     TrendingSource
	region     string
	maxResults int64

	mu        sync.RWMutex
	cache     []models.TrendingVideo
	refreshed time.Time
}

func NewTrendingService(source TrendingSource, region string, maxResults int) TrendingService {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	return &trendingService{
		source:     source,
		region:     region,
		maxResults: int64(maxResults),
	}
}

// Refresh replaces the cache with a fresh trending list. On failure the
// previous contents stay in place.
func (s *trendingService) Refresh(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("youtube discovery: %w", ErrPlatformNotConfigured)
	}

	videos, err := s.source.FetchTrending(ctx, s.region, s.maxResults)
	if err != nil {
		slog.Error("failed to fetch trending videos", "region", s.region, "error", err)
		return fmt.Errorf("failed to fetch trending videos: %w", err)
	}

	s.mu.Lock()
	s.cache = videos
	s.refreshed = time.Now()
	s.mu.Unlock()

	slog.Info("fetched trending videos", "count", len(videos), "region", s.region)
	return nil
}

func (s *trendingService) Get() []models.TrendingVideo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TrendingVideo, len(s.cache))
	copy(out, s.cache)
	return out
}

func (s *trendingService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *trendingService) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}

func (s *trendingService) Search(ctx context.Context) ([]models.TrendingVideo, error) {
	if s.source == nil {
		return nil, fmt.Errorf("youtube discovery: %w", ErrPlatformNotConfigured)
	}

	videos, err := s.source.SearchShorts(ctx, searchMaxResults)
	if err != nil {
		slog.Error("failed to search short videos", "error", err)
		return nil, fmt.Errorf("failed to search short videos: %w", err)
	}
	return videos, nil
}
