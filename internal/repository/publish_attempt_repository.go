package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/maheshrc27/trendqueue/internal/models"
)

type PublishAttemptRepository interface {
	Create(ctx context.Context, attempt *models.PublishAttempt) error
	ListByVideoID(ctx context.Context, videoID string) ([]*models.PublishAttempt, error)
}

type publishAttemptRepository struct {
	db *DB
}

func NewPublishAttemptRepository(db *DB) PublishAttemptRepository {
	return &publishAttemptRepository{db: db}
}

func (r *publishAttemptRepository) Create(ctx context.Context, attempt *models.PublishAttempt) error {
	query := `
		INSERT INTO publish_attempts (id, video_id, platform, external_id, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.exec(ctx, query,
		attempt.ID,
		attempt.VideoID,
		attempt.Platform,
		attempt.ExternalID,
		attempt.ErrorMessage,
		attempt.CreatedAt,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *publishAttemptRepository) ListByVideoID(ctx context.Context, videoID string) ([]*models.PublishAttempt, error) {
	query := `
		SELECT id, video_id, platform, external_id, error_message, created_at
		FROM publish_attempts
		WHERE video_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.query(ctx, query, videoID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	attempts := []*models.PublishAttempt{}
	for rows.Next() {
		var a models.PublishAttempt
		err := rows.Scan(&a.ID, &a.VideoID, &a.Platform, &a.ExternalID, &a.ErrorMessage, &a.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return attempts, nil
}

type memoryPublishAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string][]models.PublishAttempt
}

func NewMemoryPublishAttemptRepository() PublishAttemptRepository {
	return &memoryPublishAttemptRepository{attempts: make(map[string][]models.PublishAttempt)}
}

func (r *memoryPublishAttemptRepository) Create(ctx context.Context, attempt *models.PublishAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.VideoID] = append(r.attempts[attempt.VideoID], *attempt)
	return nil
}

func (r *memoryPublishAttemptRepository) ListByVideoID(ctx context.Context, videoID string) ([]*models.PublishAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attempts := make([]*models.PublishAttempt, 0, len(r.attempts[videoID]))
	for _, a := range r.attempts[videoID] {
		a := a
		attempts = append(attempts, &a)
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.Before(attempts[j].CreatedAt)
	})
	return attempts, nil
}
