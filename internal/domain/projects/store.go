package projects

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("project not found")

func Create(db *gorm.DB, p *Project) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return errors.New("title is required")
	}
	return db.Create(p).Error
}

func ListByUser(db *gorm.DB, userID uint) ([]Project, error) {
	var out []Project
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// GetOwned loads a project only when userID owns it.
func GetOwned(db *gorm.DB, id string, userID uint) (Project, error) {
	var p Project
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	return p, notFound(err)
}

func Get(db *gorm.DB, id string) (Project, error) {
	var p Project
	err := db.Where("id = ?", id).First(&p).Error
	return p, notFound(err)
}

func FindByQRCode(db *gorm.DB, code string) (Project, error) {
	var p Project
	err := db.Where("qr_code = ?", strings.TrimSpace(code)).First(&p).Error
	return p, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
