package functions

import (
	"context"
	"encoding/base64"
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
	"highlight-api/internal/infra/objectstore"
	"highlight-api/internal/infra/queue"
	"highlight-api/internal/infra/stripe"
	"highlight-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	r        *gin.Engine
	db       *gorm.DB
	host     *testutil.VideoHost
	store    *testutil.ObjectStore
	payments *testutil.Payments
	pub      *testutil.Publisher
	project  projects.Project
}

func newEnv(t *testing.T) *env {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t, &projects.Project{}, &videos.Video{}, &billing.Subscription{}, &billing.Purchase{})
	e := &env{
		db:       db,
		host:     testutil.NewVideoHost(),
		store:    testutil.NewObjectStore(),
		payments: testutil.NewPayments(),
		pub:      &testutil.Publisher{},
	}
	subs := billing.NewSubscriptionStore(db)
	h := NewHandler(Deps{
		DB:        db,
		Config:    config.Config{CORSOrigin: "https://app.test"},
		Log:       zap.NewNop(),
		Resolver:  access.NewResolver(subs, zap.NewNop()),
		Host:      e.host,
		Store:     e.store,
		Signer:    objectstore.NewSigner(e.store, 0),
		Payments:  e.payments,
		Publisher: e.pub,
	})

	e.project = projects.Project{UserID: 1, Title: "Anna & Tom"}
	require.NoError(t, projects.Create(db, &e.project))
	require.NoError(t, subs.Ensure(context.Background(), e.project.ID, 1))

	e.r = gin.New()
	g := e.r.Group("/functions", testutil.AsUser(1, "user"))
	g.POST("/video-upload", h.VideoUpload)
	g.POST("/storage", h.Storage)
	g.POST("/verify-payment", h.VerifyPayment)
	return e
}

func (e *env) video(action string, extra gin.H) (int, map[string]interface{}) {
	body := gin.H{"action": action, "projectId": e.project.ID}
	for k, v := range extra {
		body[k] = v
	}
	w := testutil.DoJSON(e.r, http.MethodPost, "/functions/video-upload", body)
	return w.Code, testutil.Decode(w)
}

func TestCreateUpload(t *testing.T) {
	e := newEnv(t)

	code, resp := e.video("create_upload", gin.H{"fileName": "first-dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, true, resp["success"])
	videoID := resp["videoId"].(string)
	assert.Equal(t, "https://upload.test/"+videoID, resp["uploadUrl"])

	v, err := videos.Get(e.db, videoID)
	require.NoError(t, err)
	assert.Equal(t, videos.StatusUploading, v.Status)

	code, resp = e.video("create_upload", gin.H{"fileName": "first-dance.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "already selected")
}

func TestCreateUploadPastBatchSizeInSeparateRequests(t *testing.T) {
	e := newEnv(t)

	for i := 0; i <= uploads.MaxBatchSize; i++ {
		name := fmt.Sprintf("clip-%d.mp4", i)
		code, resp := e.video("create_upload", gin.H{"fileName": name, "mimeType": "video/mp4", "fileSize": 1024})
		require.Equal(t, http.StatusOK, code, "%s: %v", name, resp)
	}

	var n int64
	e.db.Model(&videos.Video{}).Where("project_id = ?", e.project.ID).Count(&n)
	assert.EqualValues(t, uploads.MaxBatchSize+1, n)

	code, resp := e.video("create_upload", gin.H{"fileName": "clip-7.mp4", "mimeType": "video/mp4", "fileSize": 1024})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "already selected")
}

func TestCreateUploadRejectsInvalidFiles(t *testing.T) {
	e := newEnv(t)

	code, resp := e.video("create_upload", gin.H{"fileName": "menu.pdf", "mimeType": "application/pdf", "fileSize": 10})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "unsupported file type")

	code, resp = e.video("create_upload", gin.H{"fileName": "long.mp4", "mimeType": "video/mp4", "fileSize": 600 * 1024 * 1024})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["error"], "too large")
}

func TestCreateUploadHostFailure(t *testing.T) {
	e := newEnv(t)
	e.host.CreateErr = errors.New("mux unavailable")

	code, resp := e.video("create_upload", gin.H{"fileName": "a.mp4", "mimeType": "video/mp4", "fileSize": 1})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, resp["success"])
	assert.NotContains(t, resp["error"], "mux unavailable")
}

func TestUnknownProjectAndAction(t *testing.T) {
	e := newEnv(t)

	w := testutil.DoJSON(e.r, http.MethodPost, "/functions/video-upload", gin.H{"action": "create_upload", "projectId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	code, _ := e.video("explode", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetStatusPublishesReadyOnce(t *testing.T) {
	e := newEnv(t)
	_, resp := e.video("create_upload", gin.H{"fileName": "a.mp4", "mimeType": "video/mp4", "fileSize": 1})
	videoID := resp["videoId"].(string)

	code, resp := e.video("get_status", gin.H{"videoId": videoID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, videos.StatusUploading, resp["status"])
	assert.Equal(t, "", resp["playbackUrl"])

	e.host.MarkReady("up_"+videoID, "as_1", "pb_1")
	code, resp = e.video("get_status", gin.H{"videoId": videoID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, videos.StatusReady, resp["status"])
	assert.Equal(t, "https://stream.mux.com/pb_1.m3u8", resp["playbackUrl"])
	assert.Equal(t, "https://image.mux.com/pb_1/thumbnail.jpg", resp["thumbnailUrl"])

	e.video("get_status", gin.H{"videoId": videoID})
	require.Len(t, e.pub.Messages, 1)
	assert.Equal(t, queue.KeyFootageReady, e.pub.Messages[0].RoutingKey)
}

func TestDeleteVideo(t *testing.T) {
	e := newEnv(t)
	_, resp := e.video("create_upload", gin.H{"fileName": "a.mp4", "mimeType": "video/mp4", "fileSize": 1})
	videoID := resp["videoId"].(string)
	e.host.MarkReady("up_"+videoID, "as_1", "pb_1")
	e.video("get_status", gin.H{"videoId": videoID})

	code, _ := e.video("delete", gin.H{"videoId": videoID})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"as_1"}, e.host.Deleted)

	_, err := videos.Get(e.db, videoID)
	assert.ErrorIs(t, err, videos.ErrNotFound)
}

func TestRequestHighlightPriority(t *testing.T) {
	e := newEnv(t)

	code, _ := e.video("request_highlight", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	_, resp := e.video("create_upload", gin.H{"fileName": "a.mp4", "mimeType": "video/mp4", "fileSize": 1})
	videoID := resp["videoId"].(string)
	e.host.MarkReady("up_"+videoID, "as_1", "pb_1")
	e.video("get_status", gin.H{"videoId": videoID})

	code, resp = e.video("request_highlight", nil)
	require.Equal(t, http.StatusAccepted, code)
	last := e.pub.Messages[len(e.pub.Messages)-1]
	assert.Equal(t, queue.KeyHighlightRequested, last.RoutingKey)
	assert.Equal(t, priorityStandard, last.Priority)
	job := last.Body.(queue.HighlightRequested)
	assert.True(t, job.Watermark)
	assert.Equal(t, []string{videoID}, job.FootageIDs)

	_, err := billing.NewSubscriptionStore(e.db).Upgrade(context.Background(), e.project.ID, 1, plans.TierProfessional)
	require.NoError(t, err)
	code, _ = e.video("request_highlight", nil)
	require.Equal(t, http.StatusAccepted, code)
	last = e.pub.Messages[len(e.pub.Messages)-1]
	assert.Equal(t, priorityHigh, last.Priority)
	assert.Equal(t, "4k", last.Body.(queue.HighlightRequested).Quality)
}

func (e *env) storage(action string, extra gin.H) (int, map[string]interface{}) {
	body := gin.H{"action": action, "projectId": e.project.ID}
	for k, v := range extra {
		body[k] = v
	}
	w := testutil.DoJSON(e.r, http.MethodPost, "/functions/storage", body)
	return w.Code, testutil.Decode(w)
}

func TestStorageUploadSignDelete(t *testing.T) {
	e := newEnv(t)
	content := base64.StdEncoding.EncodeToString([]byte("fake mp4 bytes"))

	code, resp := e.storage("upload", gin.H{"fileName": "reel.mp4", "fileContent": content, "contentType": "video/mp4"})
	require.Equal(t, http.StatusOK, code, resp)
	path := resp["path"].(string)
	assert.Equal(t, []byte("fake mp4 bytes"), e.store.Objects[path])

	v, err := videos.Get(e.db, resp["videoId"].(string))
	require.NoError(t, err)
	assert.Equal(t, videos.StatusStored, v.Status)
	assert.Equal(t, videos.KindHighlight, v.Kind)

	code, resp = e.storage("get_url", gin.H{"path": path})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, resp["signedUrl"], path)
	e.storage("get_url", gin.H{"path": path})
	assert.Equal(t, 1, e.store.Signed)

	code, _ = e.storage("delete", gin.H{"path": path})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, e.store.Objects)
	_, err = videos.Get(e.db, v.ID)
	assert.ErrorIs(t, err, videos.ErrNotFound)
}

func TestStorageUploadRollsBackOnWriteFailure(t *testing.T) {
	e := newEnv(t)
	e.store.PutErr = errors.New("bucket gone")
	content := base64.StdEncoding.EncodeToString([]byte("x"))

	code, resp := e.storage("upload", gin.H{"fileName": "reel.mp4", "fileContent": content})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, resp["success"])

	var n int64
	e.db.Model(&videos.Video{}).Count(&n)
	assert.Zero(t, n)
}

func TestStorageUploadRemovesObjectWhenFinalUpdateFails(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.db.Callback().Update().Before("gorm:update").Register("test:fail_update", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("disk full"))
	}))
	content := base64.StdEncoding.EncodeToString([]byte("fake mp4 bytes"))

	code, resp := e.storage("upload", gin.H{"fileName": "reel.mp4", "fileContent": content, "contentType": "video/mp4"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, resp["success"])
	assert.NotContains(t, resp["error"], "disk full")

	assert.Empty(t, e.store.Objects)
	var n int64
	e.db.Model(&videos.Video{}).Count(&n)
	assert.Zero(t, n)
}

func TestStorageRejectsBadInput(t *testing.T) {
	e := newEnv(t)

	code, _ := e.storage("upload", gin.H{"fileName": "reel.mp4", "fileContent": "%%%not-base64"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.storage("upload", gin.H{"fileName": "doc.pdf", "fileContent": "eA==", "contentType": "application/pdf"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.storage("get_url", gin.H{"path": "someone-else/reel.mp4"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "QUJD", stripDataURL("data:video/mp4;base64,QUJD"))
	assert.Equal(t, "QUJD", stripDataURL(" QUJD "))
}

func (e *env) verify(sessionID string) (int, map[string]interface{}) {
	w := testutil.DoJSON(e.r, http.MethodPost, "/functions/verify-payment", gin.H{"session_id": sessionID})
	return w.Code, testutil.Decode(w)
}

func TestVerifyPaymentUnpaidLeavesPurchase(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, billing.CreatePurchase(e.db, &billing.Purchase{UserID: 1, ProjectID: e.project.ID, Tier: "premium", StripeSessionID: "cs_1"}))
	e.payments.Sessions["cs_1"] = stripe.CheckoutSession{ID: "cs_1", PaymentStatus: stripe.PaymentUnpaid}

	code, resp := e.verify("cs_1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unpaid", resp["payment_status"])

	p, err := billing.FindPurchaseBySession(e.db, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, billing.PurchasePending, p.Status)
}

func TestVerifyPaymentPaidUpgrades(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, billing.CreatePurchase(e.db, &billing.Purchase{UserID: 1, ProjectID: e.project.ID, Tier: "professional", StripeSessionID: "cs_2"}))
	e.payments.Sessions["cs_2"] = stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.PaymentPaid}

	code, resp := e.verify("cs_2")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "paid", resp["payment_status"])

	p, _ := billing.FindPurchaseBySession(e.db, "cs_2")
	assert.Equal(t, billing.PurchasePaid, p.Status)
	tier, _ := billing.NewSubscriptionStore(e.db).ProjectTier(context.Background(), e.project.ID)
	assert.Equal(t, plans.TierProfessional, tier)
}

func TestVerifyPaymentErrors(t *testing.T) {
	e := newEnv(t)

	code, _ := e.verify("")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.verify("cs_missing")
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, billing.CreatePurchase(e.db, &billing.Purchase{UserID: 2, ProjectID: e.project.ID, Tier: "premium", StripeSessionID: "cs_other"}))
	code, _ = e.verify("cs_other")
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, billing.CreatePurchase(e.db, &billing.Purchase{UserID: 1, ProjectID: e.project.ID, Tier: "premium", StripeSessionID: "cs_3"}))
	e.payments.GetErr = errors.New("stripe down")
	code, resp := e.verify("cs_3")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, false, resp["success"])
}
