package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"highlight-api/internal/infra/metrics"

	storage_go "github.com/supabase-community/storage-go"
)

// Supabase stores objects in a Supabase Storage bucket.
type Supabase struct {
	client *storage_go.Client
	bucket string
}

func NewSupabase(projectURL, serviceKey, bucket string) *Supabase {
	endpoint := strings.TrimRight(projectURL, "/") + "/storage/v1"
	return &Supabase{
		client: storage_go.NewClient(endpoint, serviceKey, map[string]string{"apikey": serviceKey}),
		bucket: bucket,
	}
}

func (s *Supabase) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, key, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	metrics.ObserveExternal("supabase", "storage.upload", err)
	if err != nil {
		return fmt.Errorf("supabase upload %s: %w", key, err)
	}
	return nil
}

func (s *Supabase) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	resp, err := s.client.CreateSignedUrl(s.bucket, key, int(ttl.Seconds()))
	metrics.ObserveExternal("supabase", "storage.sign", err)
	if err != nil {
		return "", fmt.Errorf("supabase sign %s: %w", key, err)
	}
	return resp.SignedURL, nil
}

func (s *Supabase) Delete(_ context.Context, key string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{key})
	metrics.ObserveExternal("supabase", "storage.remove", err)
	if err != nil {
		return fmt.Errorf("supabase remove %s: %w", key, err)
	}
	return nil
}
