package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is one event (a wedding) that owns footage, highlights and a subscription tier.
type Project struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	Title     string     `gorm:"not null" json:"title"`
	EventDate *time.Time `json:"eventDate,omitempty"`
	QRCode    string     `gorm:"column:qr_code;not null;uniqueIndex:idx_projects_qr_code" json:"qrCode"`
	IsShared  bool       `gorm:"not null;default:false" json:"isShared"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.QRCode == "" {
		p.QRCode = MakeQRCode(p.Title)
	}
	return nil
}
