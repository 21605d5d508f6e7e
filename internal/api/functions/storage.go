package functions

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/uploads"
	"highlight-api/internal/domain/videos"
	"highlight-api/internal/infra/objectstore"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// base64 inflates by 4/3; leave room for the JSON envelope.
const maxStorageBody = uploads.MaxFileSize/3*4 + 1<<20

type storageRequest struct {
	Action      string `json:"action"`
	ProjectID   string `json:"projectId"`
	FileName    string `json:"fileName"`
	FileContent string `json:"fileContent"`
	ContentType string `json:"contentType"`
	Path        string `json:"path"`
}

// POST /functions/storage
func (h *Handler) Storage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxStorageBody)

	var req storageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, ok := h.ownedProject(c, req.ProjectID)
	if !ok {
		return
	}

	switch req.Action {
	case "upload":
		h.storeObject(c, project.ID, req)
	case "get_url":
		h.signedURL(c, project.ID, req.Path)
	case "delete":
		h.deleteObject(c, project.ID, req.Path)
	default:
		fail(c, http.StatusBadRequest, "Unknown action")
	}
}

// storeObject records the row as pending, writes the object, then marks it stored.
// Each failure undoes the steps before it.
func (h *Handler) storeObject(c *gin.Context, projectID string, req storageRequest) {
	if req.FileName == "" || req.FileContent == "" {
		fail(c, http.StatusBadRequest, "fileName and fileContent are required")
		return
	}
	data, err := base64.StdEncoding.DecodeString(stripDataURL(req.FileContent))
	if err != nil {
		fail(c, http.StatusBadRequest, "fileContent must be base64 encoded")
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	candidate := uploads.Candidate{Name: req.FileName, MimeType: contentType, Size: int64(len(data))}
	if rej, ok := uploads.ValidateOne(candidate, nil); !ok {
		fail(c, http.StatusBadRequest, rej.Message)
		return
	}

	key, err := objectstore.ObjectKey(projectID, req.FileName)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid file name")
		return
	}

	ctx := c.Request.Context()
	db := h.DB.WithContext(ctx)
	userID := httpx.UserID(c)
	v := videos.Video{
		ProjectID:   projectID,
		UserID:      &userID,
		Source:      videos.SourceOwner,
		Kind:        videos.KindHighlight,
		FileName:    req.FileName,
		MimeType:    contentType,
		SizeBytes:   int64(len(data)),
		Status:      videos.StatusPending,
		StoragePath: &key,
	}
	if err := videos.Create(db, &v); err != nil {
		h.failErr(c, apperrors.Internal("Failed to save file record", err))
		return
	}

	if err := h.Store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		h.rollbackRow(v.ID)
		h.failErr(c, apperrors.External("Failed to store file", err))
		return
	}

	if err := videos.Update(db, v.ID, map[string]interface{}{"status": videos.StatusStored}); err != nil {
		if delErr := h.Store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			h.Log.Error("orphaned object after failed update", zap.String("path", key), zap.Error(delErr))
		}
		h.rollbackRow(v.ID)
		h.failErr(c, apperrors.Internal("Failed to save file record", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "path": key, "videoId": v.ID})
}

func (h *Handler) rollbackRow(videoID string) {
	if err := videos.Delete(h.DB, videoID); err != nil {
		h.Log.Error("failed to remove pending file record", zap.String("video_id", videoID), zap.Error(err))
	}
}

func (h *Handler) signedURL(c *gin.Context, projectID, path string) {
	if err := objectstore.ValidateKey(projectID, path); err != nil {
		fail(c, http.StatusBadRequest, "Invalid path")
		return
	}
	u, err := h.Signer.URL(c.Request.Context(), path)
	if err != nil {
		h.failErr(c, apperrors.External("Failed to create signed URL", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "signedUrl": u})
}

func (h *Handler) deleteObject(c *gin.Context, projectID, path string) {
	if err := objectstore.ValidateKey(projectID, path); err != nil {
		fail(c, http.StatusBadRequest, "Invalid path")
		return
	}
	ctx := c.Request.Context()
	if err := h.Store.Delete(ctx, path); err != nil {
		h.failErr(c, apperrors.External("Failed to delete file", err))
		return
	}
	h.Signer.Forget(path)

	err := h.DB.WithContext(ctx).
		Where("project_id = ? AND storage_path = ?", projectID, path).
		Delete(&videos.Video{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.failErr(c, apperrors.Internal("Failed to delete file record", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// stripDataURL accepts both raw base64 and "data:<type>;base64,<payload>".
func stripDataURL(s string) string {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		return s[i+len(";base64,"):]
	}
	return strings.TrimSpace(s)
}
