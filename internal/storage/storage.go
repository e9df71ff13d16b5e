// Package storage stores product image bytes outside the database. Rows keep
// only the relative path; URLs are derived from it when a response is built.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultFolder = "products"

var allowedExt = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true}

type Object struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type Storage interface {
	Upload(ctx context.Context, data []byte, contentType, folder, filename string) (*Object, error)
	// Delete is best-effort: failures are logged and reported as false.
	Delete(ctx context.Context, path string) bool
	URLFor(path string) string
}

// AllowedFile reports whether filename carries one of the accepted image extensions.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return false
	}
	return allowedExt[strings.ToLower(filename[i+1:])]
}

// ObjectPath builds folder/<utc stamp>_<sha256 fragment>_<random fragment>_<safe name>.
func ObjectPath(folder, filename string, data []byte, now time.Time) string {
	if folder = strings.Trim(cleanName(folder), "._"); folder == "" {
		folder = DefaultFolder
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s/%s_%s_%s_%s",
		folder,
		now.UTC().Format("20060102_150405"),
		hex.EncodeToString(sum[:4]),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		SanitizeName(filename),
	)
}

// SanitizeName keeps the base name only and restricts it to [A-Za-z0-9._-].
func SanitizeName(name string) string {
	if out := cleanName(name); out != "" {
		return out
	}
	return "file"
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// ContentType prefers the declared type, then the extension, then sniffing.
func ContentType(declared, filename string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if i := strings.LastIndex(filename, "."); i >= 0 {
		if ct := mime.TypeByExtension(strings.ToLower(filename[i:])); ct != "" {
			return ct
		}
	}
	return http.DetectContentType(data)
}

// deadline rewrites a failure caused by the call timeout into context.DeadlineExceeded.
func deadline(ctx context.Context, op, p string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", op, p, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s %s: %w", op, p, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
