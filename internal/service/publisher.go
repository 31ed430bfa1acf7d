package service

import (
	"context"
	"io"
)

var DefaultTags = []string{"trending", "viral", "shorts", "quantum quest"}

type PublishRequest struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string
}

// Publisher uploads a media stream to one external platform and returns the
// id the platform assigned.
type Publisher interface {
	Platform() string
	Configured() bool
	Publish(ctx context.Context, media io.Reader, size int64, req PublishRequest) (string, error)
}
