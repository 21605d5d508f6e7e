package videos

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("video not found")

func Create(db *gorm.DB, v *Video) error {
	return db.Create(v).Error
}

func Get(db *gorm.DB, id string) (Video, error) {
	var v Video
	err := db.Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Video{}, ErrNotFound
	}
	return v, err
}

// GetInProject loads a video only when it belongs to projectID.
func GetInProject(db *gorm.DB, id, projectID string) (Video, error) {
	var v Video
	err := db.Where("id = ? AND project_id = ?", id, projectID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Video{}, ErrNotFound
	}
	return v, err
}

func Update(db *gorm.DB, id string, updates map[string]interface{}) error {
	res := db.Model(&Video{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&Video{}).Error
}

// FileNames returns the raw footage names already attached to a project.
func FileNames(db *gorm.DB, projectID string) ([]string, error) {
	var names []string
	err := db.Model(&Video{}).
		Where("project_id = ? AND kind = ? AND status <> ?", projectID, KindRaw, StatusErrored).
		Pluck("file_name", &names).Error
	return names, err
}

func ListByProject(db *gorm.DB, projectID string) ([]Video, error) {
	var out []Video
	err := db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListPlayable returns the project's viewable videos, highlights first.
func ListPlayable(db *gorm.DB, projectID string) ([]Video, error) {
	var out []Video
	err := db.Where("project_id = ? AND status IN ?", projectID, []string{StatusReady, StatusStored}).
		Order("CASE WHEN kind = 'highlight' THEN 0 ELSE 1 END").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListReadySince returns raw footage that became ready after since, oldest first.
func ListReadySince(db *gorm.DB, projectID string, since time.Time) ([]Video, error) {
	var out []Video
	err := db.Where("project_id = ? AND kind = ? AND status = ? AND updated_at > ?",
		projectID, KindRaw, StatusReady, since).
		Order("updated_at ASC").
		Find(&out).Error
	return out, err
}

// ReadyFootageIDs lists the ids fed into a highlight job.
func ReadyFootageIDs(db *gorm.DB, projectID string) ([]string, error) {
	var ids []string
	err := db.Model(&Video{}).
		Where("project_id = ? AND kind = ? AND status = ?", projectID, KindRaw, StatusReady).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ListStaleUploads returns direct uploads still waiting for a file after cutoff.
func ListStaleUploads(db *gorm.DB, cutoff time.Time, limit int) ([]Video, error) {
	var out []Video
	err := db.Where("status = ? AND created_at < ?", StatusUploading, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
