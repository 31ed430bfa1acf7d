package models

import "time"

const (
	PlatformYoutube = "youtube"
	PlatformTiktok  = "tiktok"
)

type PublishAttempt struct {
	ID           string    `db:"id" json:"id"`
	VideoID      string    `db:"video_id" json:"videoId"`
	Platform     string    `db:"platform" json:"platform"`
	ExternalID   string    `db:"external_id" json:"externalId,omitempty"`
	ErrorMessage string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (a *PublishAttempt) Succeeded() bool {
	return a.ErrorMessage == "" && a.ExternalID != ""
}
