// Package jobs holds the periodic maintenance tasks run by the API process.
package jobs

import (
	"context"
	"errors"
	"time"

	"highlight-api/internal/domain/videos"
	"highlight-api/internal/infra/videohost"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const staleBatch = 100

// Pruner drops expired entries from an in-process cache.
type Pruner interface {
	Prune(now time.Time) int
}

type Jobs struct {
	db         *gorm.DB
	host       videohost.Host
	pruners    map[string]Pruner
	staleAfter time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func New(db *gorm.DB, host videohost.Host, staleAfter time.Duration, log *zap.Logger) *Jobs {
	return &Jobs{
		db:         db,
		host:       host,
		pruners:    map[string]Pruner{},
		staleAfter: staleAfter,
		log:        log,
		now:        time.Now,
	}
}

// AddPruner registers a cache for PruneCaches under name.
func (j *Jobs) AddPruner(name string, p Pruner) {
	j.pruners[name] = p
}

func (j *Jobs) PruneCaches() {
	now := j.now()
	for name, p := range j.pruners {
		if n := p.Prune(now); n > 0 {
			j.log.Debug("pruned cache", zap.String("cache", name), zap.Int("removed", n))
		}
	}
}

// ReconcileStaleUploads settles uploads that have sat in uploading past the stale
// window. Each one is refreshed from the host first; only uploads still waiting
// for a file are cancelled and marked errored.
func (j *Jobs) ReconcileStaleUploads() {
	n, err := j.reconcile(context.Background())
	if err != nil {
		j.log.Error("stale upload reconcile failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.log.Info("stale uploads reconciled", zap.Int("count", n))
	}
}

func (j *Jobs) reconcile(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.staleAfter)
	stale, err := videos.ListStaleUploads(j.db.WithContext(ctx), cutoff, staleBatch)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, v := range stale {
		settled, err := j.settle(ctx, v)
		if err != nil {
			j.log.Warn("stale upload not settled", zap.String("video_id", v.ID), zap.Error(err))
			continue
		}
		if settled {
			done++
		}
	}
	return done, nil
}

// settle refreshes v and cancels it when the host is still waiting for the file.
// An upload the host no longer knows about is treated as abandoned.
func (j *Jobs) settle(ctx context.Context, v videos.Video) (bool, error) {
	if v.HostUploadID != nil && j.host != nil {
		synced, _, err := videos.SyncStatus(ctx, j.db, j.host, v)
		switch {
		case errors.Is(err, videohost.ErrNotFound):
		case err != nil:
			return false, err
		case synced.Status != videos.StatusUploading:
			j.log.Info("stale upload progressed on host", zap.String("video_id", v.ID), zap.String("status", synced.Status))
			return true, nil
		default:
			if err := j.host.CancelUpload(ctx, *v.HostUploadID); err != nil && !errors.Is(err, videohost.ErrNotFound) {
				return false, err
			}
		}
	}
	if err := videos.Update(j.db.WithContext(ctx), v.ID, map[string]interface{}{"status": videos.StatusErrored}); err != nil {
		return false, err
	}
	return true, nil
}
