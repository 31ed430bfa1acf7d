package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// MediaStore holds the rendered video files that get published.
type MediaStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Save(ctx context.Context, key string, data []byte, contentType string) error
}

var allowedVideoTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "webm": {}, "m4v": {},
}

// sniffLen covers every magic number filetype knows about.
const sniffLen = 262

type localMediaStore struct {
	dir string
}

func NewLocalMediaStore(dir string) MediaStore {
	return &localMediaStore{dir: dir}
}

func (s *localMediaStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "\x00") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *localMediaStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%s: %w", key, ErrMediaNotFound)
		}
		return nil, 0, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		file.Close()
		return nil, 0, fmt.Errorf("%s: %w", key, ErrMediaNotFound)
	}

	return file, info.Size(), nil
}

func (s *localMediaStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error saving media: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DetectVideo checks the leading bytes of data and returns its MIME type.
func DetectVideo(data []byte) (string, error) {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == types.Unknown {
		return "", ErrUnsupportedMedia
	}
	if _, ok := allowedVideoTypes[kind.Extension]; !ok {
		return "", fmt.Errorf("file type %s: %w", kind.Extension, ErrUnsupportedMedia)
	}
	return kind.MIME.Value, nil
}

// sniffVideo verifies the stream starts like a video and returns a reader
// that still yields every byte.
func sniffVideo(r io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	if _, err := DetectVideo(head); err != nil {
		return nil, err
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}
