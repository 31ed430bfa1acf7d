package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/repository"
)

// mp4Header is the smallest prefix filetype recognises as video/mp4.
var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

func fakeMP4(size int) []byte {
	data := make([]byte, size)
	copy(data, mp4Header)
	return data
}

type fakeSource struct {
	mu       sync.Mutex
	trending []models.TrendingVideo
	search   []models.TrendingVideo
	err      error
	calls    int
	region   string
	max      int64
}

func (f *fakeSource) FetchTrending(ctx context.Context, region string, maxResults int64) ([]models.TrendingVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.region = region
	f.max = maxResults
	if f.err != nil {
		return nil, f.err
	}
	return f.trending, nil
}

func (f *fakeSource) SearchShorts(ctx context.Context, maxResults int64) ([]models.TrendingVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.max = maxResults
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

// interleavedRepository runs afterGet once, between a read and the write
// that follows it.
type interleavedRepository struct {
	repository.VideoRepository
	afterGet func()
}

func (r *interleavedRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	video, err := r.VideoRepository.GetByID(ctx, id)
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook()
	}
	return video, err
}

type fakePublisher struct {
	platform   string
	configured bool
	id         string
	err        error
	during     func()

	mu        sync.Mutex
	published []PublishRequest
	sizes     []int64
	bodies    [][]byte
}

func (f *fakePublisher) Platform() string { return f.platform }

func (f *fakePublisher) Configured() bool { return f.configured }

func (f *fakePublisher) Publish(ctx context.Context, media io.Reader, size int64, req PublishRequest) (string, error) {
	body, err := io.ReadAll(media)
	if err != nil {
		return "", err
	}
	if f.during != nil {
		f.during()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, req)
	f.sizes = append(f.sizes, size)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type memMediaStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	types   map[string]string
	openErr error
}

func newMemMediaStore() *memMediaStore {
	return &memMediaStore{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memMediaStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, 0, m.openErr
	}
	data, ok := m.files[key]
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", key, ErrMediaNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *memMediaStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return nil
}

var errUpstream = errors.New("upstream unavailable")

func trendingFixture(ids ...string) []models.TrendingVideo {
	out := make([]models.TrendingVideo, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TrendingVideo{
			ID:          id,
			Title:       "Title " + id,
			Description: "Description " + id,
			Thumbnail:   "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		})
	}
	return out
}

// sequence returns an intn that replays idx and then repeats its last value.
func sequence(idx ...int) (func(n int) int, *int) {
	calls := 0
	return func(n int) int {
		i := idx[len(idx)-1]
		if calls < len(idx) {
			i = idx[calls]
		}
		calls++
		return i % n
	}, &calls
}
