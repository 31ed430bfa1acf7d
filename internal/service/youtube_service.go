package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/trendqueue/configs"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeTitleLimit       = 100
	youtubeDescriptionLimit = 5000
)

type YoutubeService interface {
	TrendingSource
	Publisher
	DiscoveryConfigured() bool
}

type youtubeService struct {
	cfg       config.Youtube
	discovery *youtube.Service
	upload    *youtube.Service
	limiter   *rate.Limiter
}

// NewYoutubeService builds the discovery client from the API key and the
// upload client from the OAuth refresh token. Either half is left nil when its
// credentials are missing.
func NewYoutubeService(ctx context.Context, cfg config.Youtube) (YoutubeService, error) {
	var discovery, upload *youtube.Service
	var err error

	if cfg.APIKey != "" {
		discovery, err = youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("error creating YouTube discovery service: %w", err)
		}
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{youtube.YoutubeUploadScope},
			Endpoint:     google.Endpoint,
		}
		tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		upload, err = youtube.NewService(ctx, option.WithTokenSource(tokenSource))
		if err != nil {
			return nil, fmt.Errorf("error creating YouTube upload service: %w", err)
		}
	}

	return newYoutubeService(cfg, discovery, upload), nil
}

func newYoutubeService(cfg config.Youtube, discovery, upload *youtube.Service) *youtubeService {
	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &youtubeService{
		cfg:       cfg,
		discovery: discovery,
		upload:    upload,
		limiter:   rate.NewLimiter(rate.Limit(perMinute)/60, 5),
	}
}

func (s *youtubeService) Platform() string {
	return models.PlatformYoutube
}

func (s *youtubeService) Configured() bool {
	return s.upload != nil
}

func (s *youtubeService) DiscoveryConfigured() bool {
	return s.discovery != nil
}

func (s *youtubeService) FetchTrending(ctx context.Context, region string, maxResults int64) ([]models.TrendingVideo, error) {
	if s.discovery == nil {
		return nil, fmt.Errorf("youtube discovery: %w", ErrPlatformNotConfigured)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := s.discovery.Videos.
		List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(region).
		MaxResults(maxResults).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, err
	}

	videos := make([]models.TrendingVideo, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		v := models.TrendingVideo{
			ID:           item.Id,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    thumbnailURL(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
		}
		if item.Statistics != nil {
			v.ViewCount = item.Statistics.ViewCount
			v.LikeCount = item.Statistics.LikeCount
		}
		videos = append(videos, v)
	}

	return videos, nil
}

func (s *youtubeService) SearchShorts(ctx context.Context, maxResults int64) ([]models.TrendingVideo, error) {
	if s.discovery == nil {
		return nil, fmt.Errorf("youtube discovery: %w", ErrPlatformNotConfigured)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := s.discovery.Search.
		List([]string{"snippet"}).
		Order("viewCount").
		Type("video").
		VideoDuration("short").
		MaxResults(maxResults).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, err
	}

	videos := make([]models.TrendingVideo, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, models.TrendingVideo{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    thumbnailURL(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
		})
	}

	return videos, nil
}

func (s *youtubeService) Publish(ctx context.Context, media io.Reader, size int64, req PublishRequest) (string, error) {
	if s.upload == nil {
		return "", fmt.Errorf("youtube upload: %w", ErrPlatformNotConfigured)
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = s.cfg.PrivacyStatus
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       utils.Truncate(req.Title, youtubeTitleLimit),
			Description: utils.Truncate(req.Description, youtubeDescriptionLimit),
			Tags:        req.Tags,
			CategoryId:  s.cfg.UploadCategory,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: privacy,
		},
	}

	call := s.upload.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(media).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("error uploading video to YouTube: %w", err)
	}
	if response.Id == "" {
		return "", errors.New("youtube returned an empty video id")
	}

	slog.Info("video uploaded to YouTube", "youtube_id", response.Id, "url", "https://youtu.be/"+response.Id, "size", size)
	return response.Id, nil
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.High, t.Medium, t.Standard, t.Default} {
		if thumb != nil && strings.TrimSpace(thumb.Url) != "" {
			return thumb.Url
		}
	}
	return ""
}
