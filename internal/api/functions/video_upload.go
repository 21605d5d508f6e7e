package functions

import (
	"errors"
	"net/http"
	"time"

	"highlight-api/internal/api/httpx"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/uploads"
	"highlight-api/internal/domain/videos"
	"highlight-api/internal/infra/queue"
	"highlight-api/internal/infra/videohost"
	"highlight-api/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	priorityStandard uint8 = 1
	priorityHigh     uint8 = 9
)

type videoUploadRequest struct {
	Action    string `json:"action"`
	ProjectID string `json:"projectId"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	FileSize  int64  `json:"fileSize"`
	VideoID   string `json:"videoId"`
}

// POST /functions/video-upload
func (h *Handler) VideoUpload(c *gin.Context) {
	var req videoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, ok := h.ownedProject(c, req.ProjectID)
	if !ok {
		return
	}

	switch req.Action {
	case "create_upload":
		h.createUpload(c, project.ID, req)
	case "get_status":
		h.getStatus(c, project.ID, req.VideoID)
	case "delete":
		h.deleteVideo(c, project.ID, req.VideoID)
	case "request_highlight":
		h.requestHighlight(c, project.ID)
	default:
		fail(c, http.StatusBadRequest, "Unknown action")
	}
}

func (h *Handler) createUpload(c *gin.Context, projectID string, req videoUploadRequest) {
	if req.FileName == "" {
		fail(c, http.StatusBadRequest, "fileName is required")
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	existing, err := videos.FileNames(db, projectID)
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to load project files", err))
		return
	}
	candidate := uploads.Candidate{Name: req.FileName, MimeType: req.MimeType, Size: req.FileSize}
	if rej, ok := uploads.ValidateOne(candidate, existing); !ok {
		fail(c, http.StatusBadRequest, rej.Message)
		return
	}

	userID := httpx.UserID(c)
	v := videos.Video{
		ProjectID: projectID,
		UserID:    &userID,
		Source:    videos.SourceOwner,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.FileSize,
	}
	uploadURL, err := videos.StartDirectUpload(c.Request.Context(), h.DB, h.Host, h.Config.CORSOrigin, &v)
	if err != nil {
		h.failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "uploadUrl": uploadURL, "videoId": v.ID})
}

func (h *Handler) getStatus(c *gin.Context, projectID, videoID string) {
	v, ok := h.projectVideo(c, projectID, videoID)
	if !ok {
		return
	}

	v, becameReady, err := videos.SyncStatus(c.Request.Context(), h.DB, h.Host, v)
	if err != nil {
		h.failErr(c, err)
		return
	}
	if becameReady {
		h.publishFootageReady(c, v)
	}

	playbackID := ""
	if v.PlaybackID != nil {
		playbackID = *v.PlaybackID
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"status":       v.Status,
		"playbackUrl":  videohost.PlaybackURL(playbackID),
		"thumbnailUrl": videohost.ThumbnailURL(playbackID),
	})
}

func (h *Handler) deleteVideo(c *gin.Context, projectID, videoID string) {
	v, ok := h.projectVideo(c, projectID, videoID)
	if !ok {
		return
	}
	if err := videos.RemoveFromHost(c.Request.Context(), h.Host, v); err != nil {
		h.failErr(c, apperrors.External("Failed to delete video from host", err))
		return
	}
	if err := videos.Delete(h.DB.WithContext(c.Request.Context()), v.ID); err != nil {
		h.failErr(c, apperrors.Internal("Failed to delete video", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) requestHighlight(c *gin.Context, projectID string) {
	ctx := c.Request.Context()
	ids, err := videos.ReadyFootageIDs(h.DB.WithContext(ctx), projectID)
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to load footage", err))
		return
	}
	if len(ids) == 0 {
		fail(c, http.StatusBadRequest, "Upload footage and wait for processing before requesting a highlight")
		return
	}

	pid := projectID
	tier := h.Resolver.CurrentTier(ctx, &pid)
	policy := access.PolicyFor(tier)
	priority := priorityStandard
	if access.Decide(access.FeaturePriorityProcessing, tier).HasAccess {
		priority = priorityHigh
	}

	job := queue.HighlightRequested{
		ProjectID:   projectID,
		RequestedBy: httpx.UserID(c),
		FootageIDs:  ids,
		Priority:    priority,
		Quality:     string(policy.MaxQuality),
		Watermark:   policy.Watermark,
		RequestedAt: time.Now().UTC(),
	}
	if err := h.Publisher.Publish(ctx, queue.KeyHighlightRequested, priority, job); err != nil {
		h.failErr(c, apperrors.External("Failed to queue highlight job", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "queued": true, "footageCount": len(ids), "priority": priority})
}

func (h *Handler) projectVideo(c *gin.Context, projectID, videoID string) (videos.Video, bool) {
	if videoID == "" {
		fail(c, http.StatusBadRequest, "videoId is required")
		return videos.Video{}, false
	}
	v, err := videos.GetInProject(h.DB.WithContext(c.Request.Context()), videoID, projectID)
	if errors.Is(err, videos.ErrNotFound) {
		fail(c, http.StatusNotFound, "Video not found")
		return videos.Video{}, false
	}
	if err != nil {
		h.failErr(c, apperrors.Internal("Failed to load video", err))
		return videos.Video{}, false
	}
	return v, true
}

func (h *Handler) publishFootageReady(c *gin.Context, v videos.Video) {
	evt := queue.FootageReady{ProjectID: v.ProjectID, VideoID: v.ID, ReadyAt: time.Now().UTC()}
	if v.PlaybackID != nil {
		evt.PlaybackID = *v.PlaybackID
	}
	if err := h.Publisher.Publish(c.Request.Context(), queue.KeyFootageReady, priorityStandard, evt); err != nil {
		h.Log.Warn("footage.ready publish failed", zap.String("video_id", v.ID), zap.Error(err))
	}
}
