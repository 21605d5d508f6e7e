// Package objectstore writes highlight files to a bucket and hands out signed read URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"highlight-api/internal/infra/cache"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid object key")

type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the bucket path for a project file: <project>/<uuid>-<name>.
func ObjectKey(projectID, fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if projectID == "" || name == "" || name == "." || name == "/" {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf("%s/%s-%s", projectID, uuid.NewString(), name), nil
}

// ValidateKey rejects paths that escape their project prefix.
func ValidateKey(projectID, key string) error {
	clean := path.Clean(key)
	if clean != key || strings.HasPrefix(clean, "/") || !strings.HasPrefix(clean, projectID+"/") {
		return ErrInvalidKey
	}
	return nil
}

// Signer caches signed URLs until shortly before they expire.
type Signer struct {
	store  Store
	ttl    time.Duration
	margin time.Duration
	urls   *cache.Store[string]
	now    func() time.Time
}

func NewSigner(store Store, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Signer{store: store, ttl: ttl, margin: ttl / 10, urls: cache.New[string](), now: time.Now}
}

func (s *Signer) URL(ctx context.Context, key string) (string, error) {
	now := s.now()
	if u, ok := s.urls.Get(key, now); ok {
		return u, nil
	}
	u, err := s.store.SignedURL(ctx, key, s.ttl)
	if err != nil {
		return "", err
	}
	s.urls.Set(key, u, now.Add(s.ttl-s.margin))
	return u, nil
}

func (s *Signer) Forget(key string) {
	s.urls.Delete(key)
}

func (s *Signer) Prune(now time.Time) int {
	return s.urls.Prune(now)
}
