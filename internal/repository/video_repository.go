package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/trendqueue/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStatusChanged = errors.New("record status changed")
)

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	List(ctx context.Context) ([]*models.Video, error)
	ListByStatus(ctx context.Context, status models.VideoStatus) ([]*models.Video, error)
	ListByStatusAndSlot(ctx context.Context, status models.VideoStatus, slot models.Slot) ([]*models.Video, error)
	// Update writes the mutable fields only while the stored status is still
	// from. ErrStatusChanged reports a record moved by another writer.
	Update(ctx context.Context, video *models.Video, from models.VideoStatus) error
	Count(ctx context.Context) (int, error)
}

type videoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) VideoRepository {
	return &videoRepository{db: db}
}

const videoColumns = `id, title, description, thumbnail_url, video_path, source_trending, source_trending_id,
status, scheduled_post, youtube_id, tiktok_id, notes, created_at, approved_at, posted_at`

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.exec(ctx, query,
		video.ID,
		video.Title,
		video.Description,
		video.ThumbnailURL,
		video.VideoPath,
		video.SourceTrending,
		video.SourceTrendingID,
		string(video.Status),
		string(video.ScheduledPost),
		video.YoutubeID,
		video.TiktokID,
		video.Notes,
		video.CreatedAt,
		nullTime(video.ApprovedAt),
		nullTime(video.PostedAt),
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	row := r.db.queryRow(ctx, query, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	return video, nil
}

func (r *videoRepository) List(ctx context.Context) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *videoRepository) ListByStatus(ctx context.Context, status models.VideoStatus) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE status = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, string(status))
}

func (r *videoRepository) ListByStatusAndSlot(ctx context.Context, status models.VideoStatus, slot models.Slot) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE status = ? AND scheduled_post = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, string(status), string(slot))
}

func (r *videoRepository) list(ctx context.Context, query string, args ...any) ([]*models.Video, error) {
	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	videos := []*models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return videos, nil
}

func (r *videoRepository) Update(ctx context.Context, video *models.Video, from models.VideoStatus) error {
	query := `
		UPDATE videos
		SET status = ?,
			youtube_id = ?,
			tiktok_id = ?,
			notes = ?,
			approved_at = ?,
			posted_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.exec(ctx, query,
		string(video.Status),
		video.YoutubeID,
		video.TiktokID,
		video.Notes,
		nullTime(video.ApprovedAt),
		nullTime(video.PostedAt),
		video.ID,
		string(from),
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, video.ID); err != nil {
			return err
		}
		return ErrStatusChanged
	}

	return nil
}

func (r *videoRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (*models.Video, error) {
	var (
		video         models.Video
		status        string
		scheduledPost string
		approvedAt    sql.NullTime
		postedAt      sql.NullTime
	)

	err := s.Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.ThumbnailURL,
		&video.VideoPath,
		&video.SourceTrending,
		&video.SourceTrendingID,
		&status,
		&scheduledPost,
		&video.YoutubeID,
		&video.TiktokID,
		&video.Notes,
		&video.CreatedAt,
		&approvedAt,
		&postedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Status = models.VideoStatus(status)
	video.ScheduledPost = models.Slot(scheduledPost)
	if approvedAt.Valid {
		t := approvedAt.Time
		video.ApprovedAt = &t
	}
	if postedAt.Valid {
		t := postedAt.Time
		video.PostedAt = &t
	}

	return &video, nil
}
