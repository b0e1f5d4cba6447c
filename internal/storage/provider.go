// Package storage abstracts file storage behind a single capability
// interface with two adapters: local filesystem and Supabase object storage.
// The adapter is selected once at startup, never re-detected per request.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

const (
	// SignedURLTTL bounds the lifetime of pre-signed upload/download URLs.
	SignedURLTTL = 10 * time.Minute

	// MaxUploadBytes caps a single uploaded file.
	MaxUploadBytes = 10 << 20 // 10 MB
)

var (
	ErrInvalidKey               = errors.New("invalid storage key")
	ErrSignedUploadsUnsupported = errors.New("storage provider does not support signed uploads")
	ErrUnsupportedContentType   = errors.New("unsupported content type")
)

// Provider is the storage capability consumed by the upload flows.
type Provider interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedUploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	SignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	Provider           string
	UploadsRoot        string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalProvider(cfg.UploadsRoot)
	case "supabase":
		return NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

var contentTypeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AllowedContentType reports whether a file type is accepted for uploads.
func AllowedContentType(contentType string) bool {
	_, ok := contentTypeExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

// ObjectKey builds the storage key for a new upload. Filenames are replaced
// with a random nonce so client-supplied names never reach the filesystem.
func ObjectKey(orderPublicID, itemPublicID, kind, contentType string) (string, error) {
	ext, ok := contentTypeExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate upload nonce: %w", err)
	}

	key := path.Join("orders", orderPublicID, "items", itemPublicID, strings.ToLower(kind),
		hex.EncodeToString(nonce)+"."+ext)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// KeyWithinOrder reports whether a client-supplied key lives under the given
// order's prefix. Confirm flows use this so a caller cannot claim objects
// belonging to another order.
func KeyWithinOrder(key, orderPublicID string) bool {
	if ValidateKey(key) != nil {
		return false
	}
	return strings.HasPrefix(key, "orders/"+orderPublicID+"/")
}

// ValidateKey rejects keys that could escape the storage root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
