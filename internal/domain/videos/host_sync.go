package videos

import (
	"context"
	"errors"

	"highlight-api/internal/infra/videohost"
	"highlight-api/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StartDirectUpload opens a direct upload on the video host and records the video row.
// When the row cannot be written the host upload is cancelled so nothing is left
// behind on the host.
func StartDirectUpload(ctx context.Context, db *gorm.DB, host videohost.Host, corsOrigin string, v *Video) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	up, err := host.CreateUpload(ctx, corsOrigin, v.ID)
	if err != nil {
		return "", apperrors.External("Video host rejected the upload", err)
	}

	v.Kind = KindRaw
	v.Status = StatusUploading
	v.HostUploadID = &up.ID
	if err := Create(db.WithContext(ctx), v); err != nil {
		cancelErr := host.CancelUpload(context.WithoutCancel(ctx), up.ID)
		return "", apperrors.Internal("Failed to save video", errors.Join(err, cancelErr))
	}
	return up.URL, nil
}

// SyncStatus refreshes v from the video host and persists any change.
// The returned flag is true only on the transition into ready.
func SyncStatus(ctx context.Context, db *gorm.DB, host videohost.Host, v Video) (Video, bool, error) {
	if v.Kind != KindRaw || v.Status == StatusReady || v.Status == StatusErrored {
		return v, false, nil
	}
	prev := v.Status
	updates := map[string]interface{}{}

	if v.HostAssetID == nil && v.HostUploadID != nil {
		up, err := host.GetUpload(ctx, *v.HostUploadID)
		if err != nil {
			return v, false, apperrors.External("Failed to fetch upload status", err)
		}
		switch up.Status {
		case videohost.UploadErrored, videohost.UploadCancelled, videohost.UploadTimedOut:
			v.Status = StatusErrored
		case videohost.UploadAssetCreated:
			if up.AssetID != "" {
				assetID := up.AssetID
				v.HostAssetID = &assetID
				v.Status = StatusProcessing
				updates["host_asset_id"] = assetID
			}
		}
	}

	if v.HostAssetID != nil && v.Status != StatusErrored {
		asset, err := host.GetAsset(ctx, *v.HostAssetID)
		if err != nil {
			return v, false, apperrors.External("Failed to fetch asset status", err)
		}
		switch asset.Status {
		case videohost.AssetReady:
			v.Status = StatusReady
			if pid := asset.FirstPlaybackID(); pid != "" {
				v.PlaybackID = &pid
				updates["playback_id"] = pid
			}
		case videohost.AssetErrored:
			v.Status = StatusErrored
		default:
			v.Status = StatusProcessing
		}
	}

	if v.Status != prev {
		updates["status"] = v.Status
	}
	if len(updates) == 0 {
		return v, false, nil
	}
	if err := Update(db.WithContext(ctx), v.ID, updates); err != nil {
		return v, false, apperrors.Internal("Failed to save video status", err)
	}
	return v, prev != StatusReady && v.Status == StatusReady, nil
}

// RemoveFromHost deletes the host asset, or cancels a pending upload, for v.
func RemoveFromHost(ctx context.Context, host videohost.Host, v Video) error {
	switch {
	case v.HostAssetID != nil:
		return host.DeleteAsset(ctx, *v.HostAssetID)
	case v.HostUploadID != nil && v.Status == StatusUploading:
		err := host.CancelUpload(ctx, *v.HostUploadID)
		if errors.Is(err, videohost.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
