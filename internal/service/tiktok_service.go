package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	config "github.com/maheshrc27/trendqueue/configs"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/transfer"
	"github.com/maheshrc27/trendqueue/pkg/utils"
)

const (
	tiktokTokenPath       = "/v2/oauth/token/"
	tiktokCreatorInfoPath = "/v2/post/publish/creator_info/query/"
	tiktokVideoInitPath   = "/v2/post/publish/video/init/"

	tiktokTitleLimit = 2200

	// TikTok accepts a single chunk up to 64MB; larger files go in 10MB
	// chunks with the remainder folded into the last one.
	tiktokSingleChunkLimit = 64 << 20
	tiktokChunkSize        = 10 << 20
)

type TiktokService interface {
	Publisher
	RefreshToken(ctx context.Context) error
	TokenExpiresAt() time.Time
}

type tiktokService struct {
	cfg    config.Tiktok
	client *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func NewTiktokService(cfg config.Tiktok, client *http.Client) TiktokService {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &tiktokService{
		cfg:          cfg,
		client:       client,
		accessToken:  cfg.AccessToken,
		refreshToken: cfg.RefreshToken,
	}
}

func (s *tiktokService) Platform() string {
	return models.PlatformTiktok
}

func (s *tiktokService) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != "" || s.canRefresh()
}

func (s *tiktokService) TokenExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *tiktokService) canRefresh() bool {
	return s.refreshToken != "" && s.cfg.ClientKey != "" && s.cfg.ClientSecret != ""
}

func (s *tiktokService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.accessToken
	expired := token == "" || (!s.expiresAt.IsZero() && time.Now().After(s.expiresAt.Add(-time.Minute)))
	refreshable := s.canRefresh()
	s.mu.Unlock()

	if !expired {
		return token, nil
	}
	if !refreshable {
		if token != "" {
			return token, nil
		}
		return "", fmt.Errorf("tiktok: %w", ErrPlatformNotConfigured)
	}

	if err := s.RefreshToken(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, nil
}

// RefreshToken exchanges the refresh token for a new access token.
func (s *tiktokService) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	refreshable := s.canRefresh()
	s.mu.Unlock()

	if !refreshable {
		return fmt.Errorf("tiktok token refresh: %w", ErrPlatformNotConfigured)
	}

	data := url.Values{}
	data.Set("client_key", s.cfg.ClientKey)
	data.Set("client_secret", s.cfg.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+tiktokTokenPath, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading TikTok token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TikTok token endpoint returned status %d: %s", resp.StatusCode, bodyBytes)
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResponse); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.Error != "" || tokenResponse.AccessToken == "" {
		return fmt.Errorf("TikTok token refresh failed: %s %s", tokenResponse.Error, tokenResponse.ErrorDescription)
	}

	s.mu.Lock()
	s.accessToken = tokenResponse.AccessToken
	if tokenResponse.RefreshToken != "" {
		s.refreshToken = tokenResponse.RefreshToken
	}
	s.expiresAt = GetExpiresAt(tokenResponse.ExpiresIn)
	s.mu.Unlock()

	slog.Info("refreshed TikTok access token", "expires_at", s.TokenExpiresAt())
	return nil
}

// Publish direct-posts a video with the FILE_UPLOAD flow: query creator info,
// init the post, then PUT the bytes to the returned upload url.
func (s *tiktokService) Publish(ctx context.Context, media io.Reader, size int64, req PublishRequest) (string, error) {
	if size <= 0 {
		return "", errors.New("tiktok upload requires a known media size")
	}

	accessToken, err := s.token(ctx)
	if err != nil {
		return "", err
	}

	creator, err := s.queryCreatorInfo(ctx, accessToken)
	if err != nil {
		return "", fmt.Errorf("error querying creator info: %w", err)
	}

	chunkSize, chunkCount := tiktokChunks(size)

	uploadRequest := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 tiktokCaption(req),
			PrivacyLevel:          tiktokPrivacy(req.Privacy, creator.PrivacyLevelOptions),
			DisableDuet:           creator.DuetDisabled,
			DisableComment:        creator.CommentDisabled,
			DisableStitch:         creator.StitchDisabled,
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:          "FILE_UPLOAD",
			VideoSize:       size,
			ChunkSize:       chunkSize,
			TotalChunkCount: chunkCount,
		},
	}

	var result transfer.TikTokUploadResponse
	if err := s.postJSON(ctx, accessToken, tiktokVideoInitPath, uploadRequest, &result); err != nil {
		return "", fmt.Errorf("error initialising TikTok upload: %w", err)
	}
	if result.Data.UploadURL == "" || result.Data.PublishID == "" {
		return "", errors.New("TikTok did not return an upload url")
	}

	if err := s.uploadChunks(ctx, result.Data.UploadURL, media, size, chunkSize, chunkCount); err != nil {
		return "", err
	}

	slog.Info("video uploaded to TikTok", "publish_id", result.Data.PublishID, "size", size)
	return result.Data.PublishID, nil
}

func (s *tiktokService) queryCreatorInfo(ctx context.Context, accessToken string) (*transfer.TiktokCreatorInfo, error) {
	var result transfer.TiktokCreatorInfoResponse
	if err := s.postJSON(ctx, accessToken, tiktokCreatorInfoPath, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (s *tiktokService) postJSON(ctx context.Context, accessToken, path string, payload any, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope struct {
		Error transfer.TiktokError `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return fmt.Errorf("failed to decode TikTok response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !envelope.Error.OK() {
		return fmt.Errorf("TikTok API error (status %d, code %s): %s", resp.StatusCode, envelope.Error.Code, envelope.Error.Message)
	}

	return json.Unmarshal(bodyBytes, out)
}

func (s *tiktokService) uploadChunks(ctx context.Context, uploadURL string, media io.Reader, size, chunkSize, chunkCount int64) error {
	var offset int64
	for i := int64(0); i < chunkCount; i++ {
		length := chunkSize
		if i == chunkCount-1 {
			length = size - offset
		}

		chunk := io.LimitReader(media, length)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, chunk)
		if err != nil {
			return err
		}
		req.ContentLength = length
		req.Header.Set("Content-Type", "video/mp4")
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, offset+length-1, size))

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("error uploading chunk %d: %w", i+1, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
			return fmt.Errorf("TikTok rejected chunk %d with status %d", i+1, resp.StatusCode)
		}
		offset += length
	}
	return nil
}

func tiktokChunks(size int64) (chunkSize, chunkCount int64) {
	if size <= tiktokSingleChunkLimit {
		return size, 1
	}
	return tiktokChunkSize, size / tiktokChunkSize
}

func tiktokPrivacy(requested string, options []string) string {
	want := "PUBLIC_TO_EVERYONE"
	if requested != "" && requested != "public" {
		want = "SELF_ONLY"
	}
	if len(options) == 0 || slices.Contains(options, want) {
		return want
	}
	// unaudited apps may only post privately
	return options[0]
}

func tiktokCaption(req PublishRequest) string {
	caption := req.Title
	var tags []string
	for _, tag := range req.Tags {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		if tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	if len(tags) > 0 {
		caption += " " + strings.Join(tags, " ")
	}
	return utils.Truncate(caption, tiktokTitleLimit)
}
