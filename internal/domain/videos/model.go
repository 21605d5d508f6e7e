package videos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindRaw       = "raw"
	KindHighlight = "highlight"
)

// Raw footage moves uploading -> processing -> ready (or errored) on the video host.
// Highlight files move pending -> stored in object storage.
const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusErrored    = "errored"
	StatusPending    = "pending"
	StatusStored     = "stored"
)

const (
	SourceOwner = "owner"
	SourceGuest = "guest"
)

type Video struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID string `gorm:"type:uuid;not null;index" json:"projectId"`
	UserID    *uint  `gorm:"index" json:"userId,omitempty"`
	Source    string `gorm:"type:varchar(20);not null;default:'owner'" json:"source"`

	Kind      string `gorm:"type:varchar(20);not null;index" json:"kind"`
	FileName  string `gorm:"not null" json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Status    string `gorm:"type:varchar(20);not null;index" json:"status"`

	HostUploadID *string `gorm:"column:host_upload_id;index" json:"-"`
	HostAssetID  *string `gorm:"column:host_asset_id" json:"-"`
	PlaybackID   *string `gorm:"column:playback_id" json:"playbackId,omitempty"`
	StoragePath  *string `gorm:"column:storage_path" json:"storagePath,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (v *Video) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
