package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/threadloom/threadloom/pkg/metrics"
)

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// PublicURL overrides the base URL baked into returned object links,
	// for deployments where clients reach the store through a CDN or proxy.
	PublicURL string `mapstructure:"public_url"`
}

// MinIOStore stores media in an S3-compatible bucket.
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string

	ensureOnce sync.Once
	ensureErr  error
}

// NewMinIOStore connects to the object store described by cfg.
func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("media: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media: create client: %w", err)
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("media: ensure bucket %q: %w", s.bucket, s.ensureErr)
	}
	return nil
}

// Upload stores the object and returns the public URL it is served from.
func (s *MinIOStore) Upload(ctx context.Context, folder string, body io.Reader, size int64, contentType string) (string, error) {
	kind, err := DetectKind(contentType)
	if err != nil {
		return "", err
	}

	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	_, err = s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("media: put object: %w", err)
	}

	metrics.MediaUploads.WithLabelValues(string(kind)).Inc()

	return s.baseURL + "/" + key, nil
}

// Remove deletes the object behind a URL returned by Upload. URLs outside
// this store's base are ignored.
func (s *MinIOStore) Remove(ctx context.Context, objectURL string) error {
	key, ok := strings.CutPrefix(objectURL, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media: remove object: %w", err)
	}
	return nil
}
