package models

// TrendingVideo is a candidate pulled from the YouTube trending chart. It is
// cached verbatim and never mutated by consumers.
type TrendingVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	ViewCount    uint64 `json:"viewCount"`
	LikeCount    uint64 `json:"likeCount"`
}
