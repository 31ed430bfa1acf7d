package models

import "time"

type VideoStatus string

const (
	VideoStatusQueued   VideoStatus = "queued"
	VideoStatusApproved VideoStatus = "approved"
	VideoStatusPosted   VideoStatus = "posted"
	VideoStatusRejected VideoStatus = "rejected"
)

// Terminal reports whether no review transition may leave the status.
func (s VideoStatus) Terminal() bool {
	return s == VideoStatusPosted || s == VideoStatusRejected
}

type Slot string

const (
	Slot3AM Slot = "3am"
	Slot3PM Slot = "3pm"
)

var Slots = []Slot{Slot3AM, Slot3PM}

func (s Slot) Valid() bool {
	return s == Slot3AM || s == Slot3PM
}

type Video struct {
	ID               string      `db:"id" json:"id"`
	Title            string      `db:"title" json:"title"`
	Description      string      `db:"description" json:"description"`
	ThumbnailURL     string      `db:"thumbnail_url" json:"thumbnailUrl"`
	VideoPath        string      `db:"video_path" json:"videoPath,omitempty"`
	SourceTrending   bool        `db:"source_trending" json:"sourceTrending"`
	SourceTrendingID string      `db:"source_trending_id" json:"sourceTrendingId,omitempty"`
	Status           VideoStatus `db:"status" json:"status"`
	ScheduledPost    Slot        `db:"scheduled_post" json:"scheduledPost"`
	YoutubeID        string      `db:"youtube_id" json:"youtubeId,omitempty"`
	TiktokID         string      `db:"tiktok_id" json:"tiktokId,omitempty"`
	Notes            string      `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
	ApprovedAt       *time.Time  `db:"approved_at" json:"approvedAt,omitempty"`
	PostedAt         *time.Time  `db:"posted_at" json:"postedAt,omitempty"`
}

// Clone returns a deep copy so stored records are never aliased.
func (v *Video) Clone() *Video {
	if v == nil {
		return nil
	}
	c := *v
	if v.ApprovedAt != nil {
		t := *v.ApprovedAt
		c.ApprovedAt = &t
	}
	if v.PostedAt != nil {
		t := *v.PostedAt
		c.PostedAt = &t
	}
	return &c
}
