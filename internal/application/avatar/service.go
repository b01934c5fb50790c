package avatar

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/pkg/id"
)

// Upload is an avatar image received from the client.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type Service interface {
	// Put stores the image and returns its object key.
	Put(ctx context.Context, userID string, in Upload) (string, error)
	Remove(ctx context.Context, key string) error
}

// allowedTypes are the raster formats served back as avatars. Markup formats
// such as SVG are refused since they can carry script.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}

type service struct {
	store objectStore
}

func NewService(store objectStore) Service {
	return &service{store: store}
}

func (s *service) Put(ctx context.Context, userID string, in Upload) (string, error) {
	safeName := sanitizeFilename(in.Filename)
	contentType := normalizeContentType(in.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromName(safeName)
	}
	if !allowedTypes[contentType] {
		return "", fmt.Errorf("avatar must be a jpeg, png, gif or webp image, got %s: %w", contentType, domain.ErrValidation)
	}
	key := objectKey(userID, id.New(), safeName)
	if err := s.store.Upload(ctx, key, in.Reader, contentType); err != nil {
		return "", fmt.Errorf("upload avatar: %w: %w", domain.ErrStorageFailure, err)
	}
	return key, nil
}

func (s *service) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove avatar: %w: %w", domain.ErrStorageFailure, err)
	}
	return nil
}

// objectKey scopes avatars per user; the ULID keeps successive uploads of the
// same filename from overwriting each other.
func objectKey(userID, uploadID, name string) string {
	return fmt.Sprintf("avatars/%s/%s-%s", userID, uploadID, name)
}

// normalizeContentType drops parameters and case from a Content-Type value.
func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func contentTypeFromName(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
