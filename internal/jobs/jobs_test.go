package job

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/service"
	"github.com/robfig/cron"
)

type fakeTiktok struct {
	configured bool
	expiresAt  time.Time
	refreshes  int
	err        error
}

func (f *fakeTiktok) Platform() string { return models.PlatformTiktok }

func (f *fakeTiktok) Configured() bool { return f.configured }

func (f *fakeTiktok) Publish(ctx context.Context, media io.Reader, size int64, req service.PublishRequest) (string, error) {
	return "", nil
}

func (f *fakeTiktok) RefreshToken(ctx context.Context) error {
	f.refreshes++
	return f.err
}

func (f *fakeTiktok) TokenExpiresAt() time.Time { return f.expiresAt }

type fakePosting struct {
	slots []models.Slot
}

func (f *fakePosting) PostApproved(ctx context.Context, slot models.Slot) (*service.PostingSummary, error) {
	f.slots = append(f.slots, slot)
	return &service.PostingSummary{Slot: slot}, nil
}

func (f *fakePosting) PostVideo(ctx context.Context, id string) (*models.Video, error) {
	return nil, nil
}

func (f *fakePosting) Attempts(ctx context.Context, id string) ([]*models.PublishAttempt, error) {
	return nil, nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Queue: "default"}, nil
}

type fakeSource struct {
	calls int
}

func (f *fakeSource) FetchTrending(ctx context.Context, region string, maxResults int64) ([]models.TrendingVideo, error) {
	f.calls++
	return []models.TrendingVideo{{ID: "a"}, {ID: "b"}}, nil
}

func (f *fakeSource) SearchShorts(ctx context.Context, maxResults int64) ([]models.TrendingVideo, error) {
	return nil, nil
}

func TestTokenRefreshJob(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		configured bool
		expiresAt  time.Time
		want       int
	}{
		{"unconfigured", false, time.Time{}, 0},
		{"unknown expiry", true, time.Time{}, 1},
		{"expiring soon", true, now.Add(10 * time.Minute), 1},
		{"fresh", true, now.Add(2 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiktok := &fakeTiktok{configured: tt.configured, expiresAt: tt.expiresAt}
			job := NewTokenRefreshJob(tiktok)
			job.now = func() time.Time { return now }

			job.RefreshTokens()
			if tiktok.refreshes != tt.want {
				t.Errorf("Expected %d refreshes, got %d", tt.want, tiktok.refreshes)
			}
		})
	}
}

func TestTokenRefreshJobSurvivesFailure(t *testing.T) {
	tiktok := &fakeTiktok{configured: true, err: errors.New("invalid_grant")}
	NewTokenRefreshJob(tiktok).RefreshTokens()
	if tiktok.refreshes != 1 {
		t.Errorf("Expected one attempt, got %d", tiktok.refreshes)
	}
}

func TestPostingJobUsesQueue(t *testing.T) {
	ps := &fakePosting{}
	client := &fakeEnqueuer{}

	NewPostingJob(ps, client).Post3PM()
	if len(client.tasks) != 1 || len(ps.slots) != 0 {
		t.Errorf("Expected the pass handed to the queue, got %d tasks and %d direct runs", len(client.tasks), len(ps.slots))
	}
}

func TestPostingJobFallsBackToDirectRun(t *testing.T) {
	ps := &fakePosting{}
	NewPostingJob(ps, nil).Post3AM()
	if len(ps.slots) != 1 || ps.slots[0] != models.Slot3AM {
		t.Errorf("Expected direct 3am run, got %v", ps.slots)
	}

	ps = &fakePosting{}
	NewPostingJob(ps, &fakeEnqueuer{err: errors.New("redis down")}).Post3PM()
	if len(ps.slots) != 1 || ps.slots[0] != models.Slot3PM {
		t.Errorf("Expected direct 3pm run after enqueue failure, got %v", ps.slots)
	}
}

func TestTrendingRefreshJob(t *testing.T) {
	source := &fakeSource{}
	ts := service.NewTrendingService(source, "US", 50)

	NewTrendingRefreshJob(ts).Refresh()
	if source.calls != 1 || ts.Len() != 2 {
		t.Errorf("Expected cache filled, got %d calls and %d entries", source.calls, ts.Len())
	}
}

func TestSchedule(t *testing.T) {
	jobs := Jobs{
		Trending: NewTrendingRefreshJob(service.NewTrendingService(&fakeSource{}, "US", 50)),
		Posting:  NewPostingJob(&fakePosting{}, nil),
		Tokens:   NewTokenRefreshJob(&fakeTiktok{}),
	}

	c := cron.New()
	if err := Schedule(c, "@every 30m", jobs); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(c.Entries()) != 4 {
		t.Errorf("Expected 4 entries, got %d", len(c.Entries()))
	}

	if err := Schedule(cron.New(), "not a spec", jobs); err == nil {
		t.Errorf("Expected error for invalid refresh spec")
	}
}

func TestSlotSpecsFireAtThreeOClock(t *testing.T) {
	from := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)

	am, err := cron.Parse(Spec3AM)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if next := am.Next(from); next.Hour() != 3 || next.Minute() != 0 || next.Day() != 19 {
		t.Errorf("Unexpected 3am firing %v", next)
	}

	pm, err := cron.Parse(Spec3PM)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if next := pm.Next(from); next.Hour() != 15 || next.Day() != 18 {
		t.Errorf("Unexpected 3pm firing %v", next)
	}
}
