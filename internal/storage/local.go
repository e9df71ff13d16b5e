package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// LocalStore keeps objects on disk under Dir; echo serves Dir at BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
	now     func() time.Time
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), now: time.Now}, nil
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, contentType, folder, filename string) (*Object, error) {
	p := ObjectPath(folder, filename, data, s.now())
	if err := ctx.Err(); err != nil {
		return nil, deadline(ctx, "upload", p, err)
	}

	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("upload %s: %w", p, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("upload %s: %w", p, err)
	}

	return &Object{
		Path:        p,
		URL:         s.URLFor(p),
		Size:        int64(len(data)),
		ContentType: ContentType(contentType, filename, data),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, p string) bool {
	l := logging.FromContext(ctx)
	full, err := s.resolve(p)
	if err != nil {
		l.Warn("storage_delete_failed", "backend", "local", "path", p, "error", err)
		return false
	}
	if err := os.Remove(full); err != nil {
		l.Warn("storage_delete_failed", "backend", "local", "path", p, "error", err)
		return false
	}
	return true
}

func (s *LocalStore) URLFor(p string) string {
	if p == "" {
		return ""
	}
	return s.BaseURL + "/" + strings.TrimLeft(p, "/")
}

// resolve maps a relative object path into Dir and rejects anything that escapes it.
func (s *LocalStore) resolve(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if p == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid path %q", p)
	}
	return filepath.Join(s.Dir, clean), nil
}
