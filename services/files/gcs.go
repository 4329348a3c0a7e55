// Package filesvc stores uploaded material files.
package filesvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/trezcool/darslik/core"
	"github.com/trezcool/darslik/core/course"
)

// GCSStore keeps files in a Google Cloud Storage bucket.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ course.FileStore = (*GCSStore)(nil)

func NewGCSStore(ctx context.Context, bucket, publicBaseURL string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("files bucket is required")
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("writing %q to GCS: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing GCS writer: %w", err)
	}
	return publicURL(s.baseURL, key), nil
}

// Delete ignores objects that are already gone.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting GCS object %q: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func publicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// NewStore returns the store configured by conf.Files.Backend.
func NewStore(ctx context.Context, conf core.FilesConfig) (course.FileStore, error) {
	switch conf.Backend {
	case "gcs":
		return NewGCSStore(ctx, conf.Bucket, conf.PublicBaseURL)
	case "local", "":
		return NewLocalStore(conf.LocalDir, conf.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown files backend %q", conf.Backend)
	}
}
