package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseProvider stores files in a Supabase storage bucket and hands out
// short-lived signed URLs so clients upload and download directly.
type SupabaseProvider struct {
	client  *storage_go.Client
	bucket  string
	baseURL string
}

func NewSupabaseProvider(supabaseURL, serviceKey, bucket string) (*SupabaseProvider, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(supabaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if serviceKey == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("supabase bucket is required")
	}

	return &SupabaseProvider{
		client:  storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

func (p *SupabaseProvider) Put(_ context.Context, key, contentType string, r io.Reader) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	upsert := true
	if _, err := p.client.UploadFile(p.bucket, key, r, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return fmt.Errorf("failed to upload to supabase: %w", err)
	}
	return nil
}

func (p *SupabaseProvider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := p.client.DownloadFile(p.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download from supabase: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (p *SupabaseProvider) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := p.client.RemoveFile(p.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete from supabase: %w", err)
	}
	return nil
}

func (p *SupabaseProvider) Exists(_ context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	dir, base := path.Split(key)
	files, err := p.client.ListFiles(p.bucket, strings.TrimSuffix(dir, "/"), storage_go.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list supabase files: %w", err)
	}
	for _, f := range files {
		if f.Name == base {
			return true, nil
		}
	}
	return false, nil
}

func (p *SupabaseProvider) SignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	res, err := p.client.CreateSignedUploadUrl(p.bucket, key)
	if err != nil {
		return "", fmt.Errorf("failed to create signed upload url: %w", err)
	}
	return p.absoluteURL(res.Url), nil
}

func (p *SupabaseProvider) SignedDownloadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	res, err := p.client.CreateSignedUrl(p.bucket, key, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to create signed download url: %w", err)
	}
	return p.absoluteURL(res.SignedURL), nil
}

// absoluteURL joins API-relative signed paths onto the project base URL.
func (p *SupabaseProvider) absoluteURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return p.baseURL + "/storage/v1/" + strings.TrimPrefix(u, "/")
}
