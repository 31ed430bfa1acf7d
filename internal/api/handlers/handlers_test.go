package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/trendqueue/configs"
	"github.com/maheshrc27/trendqueue/internal/models"
	"github.com/maheshrc27/trendqueue/internal/repository"
	"github.com/maheshrc27/trendqueue/internal/service"
	"github.com/maheshrc27/trendqueue/internal/transfer"
)

var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

type stubSource struct {
	videos []models.TrendingVideo
	err    error
}

func (s *stubSource) FetchTrending(ctx context.Context, region string, maxResults int64) ([]models.TrendingVideo, error) {
	return s.videos, s.err
}

func (s *stubSource) SearchShorts(ctx context.Context, maxResults int64) ([]models.TrendingVideo, error) {
	return s.videos, s.err
}

type stubPublisher struct {
	platform string
}

func (p *stubPublisher) Platform() string { return p.platform }

func (p *stubPublisher) Configured() bool { return true }

func (p *stubPublisher) Publish(ctx context.Context, media io.Reader, size int64, req service.PublishRequest) (string, error) {
	io.Copy(io.Discard, media)
	return p.platform + "-id", nil
}

type testApp struct {
	app      *fiber.App
	source   *stubSource
	videos   repository.VideoRepository
	queue    service.QueueService
	selector *service.Selector
	media    service.MediaStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		source: &stubSource{videos: []models.TrendingVideo{
			{ID: "yt1", Title: "Cats", Description: "Cats doing things", Thumbnail: "https://i.ytimg.com/vi/yt1/hqdefault.jpg"},
		}},
		videos:   repository.NewMemoryVideoRepository(),
		selector: service.NewSelector(service.MaxSelectionTrials, nil),
		media:    service.NewLocalMediaStore(t.TempDir()),
	}
	attempts := repository.NewMemoryPublishAttemptRepository()

	trending := service.NewTrendingService(ta.source, "US", 50)
	ta.queue = service.NewQueueService(ta.videos, trending, ta.selector, ta.media, service.QueueOptions{
		TitlePrefix:      "Quantum Quest: ",
		DescriptionLimit: 150,
	})
	posting := service.NewPostingService(ta.videos, attempts, ta.media, []service.Publisher{
		&stubPublisher{platform: models.PlatformYoutube},
		&stubPublisher{platform: models.PlatformTiktok},
	}, service.PostingOptions{})

	youtube, err := service.NewYoutubeService(context.Background(), config.Youtube{})
	if err != nil {
		t.Fatalf("NewYoutubeService failed: %v", err)
	}
	tiktok := service.NewTiktokService(config.Tiktok{}, nil)

	ta.app = fiber.New()
	api := ta.app.Group("/api")
	NewHealthHandler(ta.queue, trending, ta.selector, youtube, tiktok).Register(api)
	NewQueueHandler(ta.queue, posting).Register(api)
	NewTrendingHandler(trending).Register(api)
	NewPostingHandler(posting).Register(api)
	return ta
}

func (ta *testApp) do(t *testing.T, method, path string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func (ta *testApp) generate(t *testing.T) *models.Video {
	t.Helper()
	status, body := ta.do(t, "POST", "/api/queue/generate", nil, "")
	if status != http.StatusOK {
		t.Fatalf("Generate returned %d: %s", status, body)
	}
	var resp transfer.VideoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("Bad generate response: %v", err)
	}
	return resp.Video
}

func TestGenerateAndList(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, "POST", "/api/queue/generate", nil, "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", status, body)
	}
	var resp transfer.VideoResponse
	json.Unmarshal(body, &resp)
	if resp.Message != "Video generated from trending" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.Video.Title != "Quantum Quest: Cats" || resp.Video.Status != models.VideoStatusQueued {
		t.Errorf("Unexpected video %+v", resp.Video)
	}
	if !strings.Contains(string(body), `"thumbnailUrl"`) || !strings.Contains(string(body), `"scheduledPost"`) {
		t.Errorf("Expected camelCase fields in %s", body)
	}

	status, body = ta.do(t, "GET", "/api/queue", nil, "")
	var list []models.Video
	json.Unmarshal(body, &list)
	if status != http.StatusOK || len(list) != 1 {
		t.Errorf("Expected one queued video, got %d %s", status, body)
	}

	status, body = ta.do(t, "GET", "/api/queue/status/approved", nil, "")
	if status != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("Expected empty approved list, got %d %s", status, body)
	}
}

func TestGenerateWithoutCandidates(t *testing.T) {
	ta := newTestApp(t)
	ta.source.videos = nil

	status, body := ta.do(t, "POST", "/api/queue/generate", nil, "")
	if status != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", status)
	}
	if !strings.Contains(string(body), "No trending videos found") {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestReviewFlow(t *testing.T) {
	ta := newTestApp(t)
	video := ta.generate(t)

	status, body := ta.do(t, "POST", "/api/queue/"+video.ID+"/approve", nil, "")
	if status != http.StatusOK || !strings.Contains(string(body), "Video approved") {
		t.Fatalf("Approve returned %d: %s", status, body)
	}

	status, body = ta.do(t, "POST", "/api/queue/"+video.ID+"/reject", strings.NewReader(`{"reason":"off brand"}`), fiber.MIMEApplicationJSON)
	if status != http.StatusOK {
		t.Fatalf("Reject returned %d: %s", status, body)
	}
	var resp transfer.VideoResponse
	json.Unmarshal(body, &resp)
	if resp.Message != "Video rejected" || resp.Video.Notes != "off brand" || resp.Video.Status != models.VideoStatusRejected {
		t.Errorf("Unexpected reject response %s", body)
	}

	status, _ = ta.do(t, "POST", "/api/queue/"+video.ID+"/approve", nil, "")
	if status != http.StatusConflict {
		t.Errorf("Expected 409 approving a rejected video, got %d", status)
	}
}

func TestRejectDefaultReason(t *testing.T) {
	ta := newTestApp(t)
	video := ta.generate(t)

	status, body := ta.do(t, "POST", "/api/queue/"+video.ID+"/reject", nil, "")
	if status != http.StatusOK || !strings.Contains(string(body), service.DefaultRejectReason) {
		t.Errorf("Expected default reason, got %d %s", status, body)
	}
}

func TestRejectUnreadableBodyUsesDefaultReason(t *testing.T) {
	ta := newTestApp(t)

	for _, contentType := range []string{"", "application/json"} {
		video := ta.generate(t)
		status, body := ta.do(t, "POST", "/api/queue/"+video.ID+"/reject", strings.NewReader(`{"reason":`), contentType)
		if status != http.StatusOK || !strings.Contains(string(body), service.DefaultRejectReason) {
			t.Errorf("content type %q: expected default reason, got %d %s", contentType, status, body)
		}
	}
}

func TestUnknownVideo(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/api/queue/nope/approve", "/api/queue/nope/reject", "/api/queue/nope/post"} {
		status, body := ta.do(t, "POST", path, nil, "")
		if status != http.StatusNotFound || !strings.Contains(string(body), "Video not found") {
			t.Errorf("%s: expected 404, got %d %s", path, status, body)
		}
	}

	status, _ := ta.do(t, "GET", "/api/queue/nope/attempts", nil, "")
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 for attempts, got %d", status)
	}
}

func TestUploadMediaAndPost(t *testing.T) {
	ta := newTestApp(t)
	video := ta.generate(t)

	status, _ := ta.do(t, "POST", "/api/queue/"+video.ID+"/post", nil, "")
	if status != http.StatusConflict {
		t.Errorf("Expected 409 posting a queued video, got %d", status)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "render.mp4")
	part.Write(append(append([]byte{}, mp4Header...), make([]byte, 2048)...))
	writer.Close()

	status, body := ta.do(t, "PUT", "/api/queue/"+video.ID+"/media", &buf, writer.FormDataContentType())
	if status != http.StatusOK {
		t.Fatalf("Upload returned %d: %s", status, body)
	}

	ta.do(t, "POST", "/api/queue/"+video.ID+"/approve", nil, "")
	status, body = ta.do(t, "POST", "/api/queue/"+video.ID+"/post", nil, "")
	if status != http.StatusOK {
		t.Fatalf("Post returned %d: %s", status, body)
	}
	var resp transfer.VideoResponse
	json.Unmarshal(body, &resp)
	if resp.Video.Status != models.VideoStatusPosted || resp.Video.YoutubeID != "youtube-id" || resp.Video.TiktokID != "tiktok-id" {
		t.Errorf("Unexpected posted video %s", body)
	}

	status, body = ta.do(t, "GET", "/api/queue/"+video.ID+"/attempts", nil, "")
	var attempts []models.PublishAttempt
	json.Unmarshal(body, &attempts)
	if status != http.StatusOK || len(attempts) != 2 {
		t.Errorf("Expected two attempts, got %d %s", status, body)
	}
}

func TestUploadMediaRejectsNonVideo(t *testing.T) {
	ta := newTestApp(t)
	video := ta.generate(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "notes.txt")
	part.Write([]byte("just some text"))
	writer.Close()

	status, _ := ta.do(t, "PUT", "/api/queue/"+video.ID+"/media", &buf, writer.FormDataContentType())
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", status)
	}

	status, _ = ta.do(t, "PUT", "/api/queue/"+video.ID+"/media", nil, "")
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 without a file, got %d", status)
	}
}

func TestPostingSlot(t *testing.T) {
	ta := newTestApp(t)
	video := ta.generate(t)
	ta.do(t, "POST", "/api/queue/"+video.ID+"/approve", nil, "")

	status, body := ta.do(t, "POST", "/api/posting/"+string(video.ScheduledPost), nil, "")
	if status != http.StatusOK {
		t.Fatalf("Posting returned %d: %s", status, body)
	}
	var summary service.PostingSummary
	json.Unmarshal(body, &summary)
	if summary.Processed != 1 || summary.Posted != 1 {
		t.Errorf("Unexpected summary %s", body)
	}

	status, _ = ta.do(t, "POST", "/api/posting/noon", nil, "")
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown slot, got %d", status)
	}
}

func TestTrendingEndpoints(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, "GET", "/api/trending", nil, "")
	var videos []models.TrendingVideo
	json.Unmarshal(body, &videos)
	if status != http.StatusOK || len(videos) != 1 || videos[0].ID != "yt1" {
		t.Errorf("Unexpected trending response %d %s", status, body)
	}

	status, _ = ta.do(t, "GET", "/api/trending/search", nil, "")
	if status != http.StatusOK {
		t.Errorf("Expected 200 from search, got %d", status)
	}

	ta.source.err = io.ErrUnexpectedEOF
	status, _ = ta.do(t, "GET", "/api/trending/search", nil, "")
	if status != http.StatusBadGateway {
		t.Errorf("Expected 502 on upstream failure, got %d", status)
	}
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	ta.generate(t)

	status, body := ta.do(t, "GET", "/api/health", nil, "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}

	var health transfer.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("Bad health response: %v", err)
	}
	if health.Status != "ok" || health.Videos != 1 || health.TrendingCached != 1 || health.UsedVideos != 1 {
		t.Errorf("Unexpected health %+v", health)
	}
	if health.YoutubeConnected || health.TiktokConnected {
		t.Errorf("Expected unconfigured platforms, got %+v", health)
	}
	if health.LastRefreshed == "" {
		t.Errorf("Expected lastRefreshed after generation")
	}
}
