package transfer

import "github.com/maheshrc27/trendqueue/internal/models"

type RejectRequest struct {
	Reason string `json:"reason"`
}

type VideoResponse struct {
	Message string        `json:"message"`
	Video   *models.Video `json:"video"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Videos           int    `json:"videos"`
	YoutubeConnected bool   `json:"youtubeConnected"`
	TiktokConnected  bool   `json:"tiktokConnected"`
	TrendingCached   int    `json:"trendingCached"`
	UsedVideos       int    `json:"usedVideos"`
	LastRefreshed    string `json:"lastRefreshed,omitempty"`
}
