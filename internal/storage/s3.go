package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type S3Config struct {
	Endpoint  string
	KeyID     string
	AppKey    string
	Bucket    string
	UseSSL    bool
	PublicURL string
	Timeout   time.Duration
}

// S3Store talks to any S3 compatible bucket (Backblaze B2, MinIO, AWS).
type S3Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.KeyID, cfg.AppKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: base,
		timeout: cfg.Timeout,
		now:     time.Now,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, data []byte, contentType, folder, filename string) (*Object, error) {
	p := ObjectPath(folder, filename, data, s.now())
	ct := ContentType(contentType, filename, data)

	cctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	info, err := s.client.PutObject(cctx, s.bucket, p, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: ct})
	if err != nil {
		return nil, deadline(cctx, "upload", p, err)
	}

	return &Object{Path: p, URL: s.URLFor(p), Size: info.Size, ContentType: ct}, nil
}

func (s *S3Store) Delete(ctx context.Context, p string) bool {
	if p == "" {
		return false
	}
	cctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.RemoveObject(cctx, s.bucket, p, minio.RemoveObjectOptions{}); err != nil {
		logging.FromContext(ctx).Warn("storage_delete_failed", "backend", "s3", "path", p, "error", deadline(cctx, "delete", p, err))
		return false
	}
	return true
}

func (s *S3Store) URLFor(p string) string {
	if p == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(p, "/")
}
