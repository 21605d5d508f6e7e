package guest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"highlight-api/config"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/plans"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/uploads"
	"highlight-api/internal/domain/videos"
	"highlight-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	r       *gin.Engine
	db      *gorm.DB
	host    *testutil.VideoHost
	subs    *billing.SubscriptionStore
	project projects.Project
}

func setup(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t, &projects.Project{}, &videos.Video{}, &billing.Subscription{})
	f := &fixture{db: db, host: testutil.NewVideoHost(), subs: billing.NewSubscriptionStore(db)}
	f.project = projects.Project{UserID: 1, Title: "Anna & Tom"}
	require.NoError(t, projects.Create(db, &f.project))
	require.NoError(t, f.subs.Ensure(context.Background(), f.project.ID, 1))

	h := NewHandler(db, access.NewResolver(f.subs, zap.NewNop()), f.host, config.Config{}, zap.NewNop())
	f.r = gin.New()
	f.r.GET("/guest/:qrCode", h.Info)
	f.r.POST("/guest/:qrCode/uploads", h.CreateUpload)
	return f
}

func (f *fixture) upgrade(t *testing.T, tier plans.Tier) {
	_, err := f.subs.Upgrade(context.Background(), f.project.ID, 1, tier)
	require.NoError(t, err)
}

func TestInfo(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(f.r, http.MethodGet, "/guest/"+f.project.QRCode, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.Decode(w)
	assert.Equal(t, "Anna & Tom", body["projectTitle"])
	assert.Equal(t, false, body["uploadsOpen"])

	f.upgrade(t, plans.TierPremium)
	w = testutil.DoJSON(f.r, http.MethodGet, "/guest/"+f.project.QRCode, nil)
	assert.Equal(t, true, testutil.Decode(w)["uploadsOpen"])

	w = testutil.DoJSON(f.r, http.MethodGet, "/guest/unknown-code", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateUploadNeedsPremium(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Empty(t, f.host.Uploads)
}

func TestCreateUpload(t *testing.T) {
	f := setup(t)
	f.upgrade(t, plans.TierPremium)

	w := testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	require.Equal(t, http.StatusCreated, w.Code)
	body := testutil.Decode(w)
	videoID := body["videoId"].(string)
	assert.Equal(t, "https://upload.test/"+videoID, body["uploadUrl"])

	v, err := videos.Get(f.db, videoID)
	require.NoError(t, err)
	assert.Equal(t, videos.SourceGuest, v.Source)
	assert.Nil(t, v.UserID)
	assert.Equal(t, videos.StatusUploading, v.Status)

	w = testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "duplicate", testutil.Decode(w)["reason"])
}

func TestCreateUploadNotCappedByStoredFootage(t *testing.T) {
	f := setup(t)
	f.upgrade(t, plans.TierPremium)
	for i := 0; i < uploads.MaxBatchSize; i++ {
		require.NoError(t, videos.Create(f.db, &videos.Video{ProjectID: f.project.ID, Kind: videos.KindRaw,
			FileName: fmt.Sprintf("owner-%d.mp4", i), Status: videos.StatusReady}))
	}

	w := testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "guest.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateUploadRejectsNonVideo(t *testing.T) {
	f := setup(t)
	f.upgrade(t, plans.TierPremium)

	w := testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "speech.pdf", "mimeType": "application/pdf", "fileSize": 1024})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type", testutil.Decode(w)["reason"])
}

func TestCreateUploadHostDown(t *testing.T) {
	f := setup(t)
	f.upgrade(t, plans.TierPremium)
	f.host.CreateErr = errors.New("503")

	w := testutil.DoJSON(f.r, http.MethodPost, "/guest/"+f.project.QRCode+"/uploads",
		map[string]interface{}{"fileName": "dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
