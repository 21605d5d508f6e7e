package billing

import (
	"context"
	"net/http"
	"testing"
	"time"

	"highlight-api/config"
	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/billing"
	"highlight-api/internal/domain/plans"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/users"
	"highlight-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	r        *gin.Engine
	db       *gorm.DB
	subs     *billing.SubscriptionStore
	payments *testutil.Payments
	project  projects.Project
}

func setup(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t, &users.User{}, &plans.Plan{}, &projects.Project{}, &billing.Subscription{}, &billing.Purchase{})
	f := &fixture{db: db, subs: billing.NewSubscriptionStore(db), payments: testutil.NewPayments()}

	require.NoError(t, db.Create(&users.User{ID: 1, Name: "Anna", Email: "anna@example.com"}).Error)
	f.project = projects.Project{UserID: 1, Title: "Anna & Tom"}
	require.NoError(t, projects.Create(db, &f.project))
	require.NoError(t, f.subs.Ensure(context.Background(), f.project.ID, 1))
	for _, p := range []plans.Plan{
		{Name: "Premium", Tier: "premium", PriceCents: 14900, Currency: "eur", StripePriceID: "price_premium"},
		{Name: "Professional", Tier: "professional", PriceCents: 29900, Currency: "eur", StripePriceID: "price_pro"},
	} {
		_, err := plans.Upsert(db, p)
		require.NoError(t, err)
	}

	h := NewHandler(db, f.subs, access.NewResolver(f.subs, zap.NewNop()), f.payments,
		config.Config{AppURL: "https://app.test/"}, zap.NewNop())
	f.r = gin.New()
	g := f.r.Group("/", testutil.AsUser(1, "user"))
	g.POST("/create-checkout-session", h.CreateCheckoutSession)
	g.GET("/payments", h.GetPaymentHistory)
	g.GET("/subscription", h.GetSubscription)
	return f
}

func TestCheckoutByTier(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session",
		map[string]string{"project_id": f.project.ID, "tier": "premium"})
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.Decode(w)
	assert.Equal(t, "cs_test_price_premium", body["session_id"])

	require.Len(t, f.payments.Created, 1)
	params := f.payments.Created[0]
	assert.Equal(t, "anna@example.com", params.Email)
	assert.Equal(t, f.project.ID, params.Metadata["project_id"])
	assert.Equal(t, "premium", params.Metadata["tier"])
	assert.Equal(t, "https://app.test/projects/"+f.project.ID+"?session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)

	p, err := billing.FindPurchaseBySession(f.db, "cs_test_price_premium")
	require.NoError(t, err)
	assert.Equal(t, billing.PurchasePending, p.Status)
	assert.Equal(t, int64(14900), p.AmountCents)
}

func TestCheckoutByPriceID(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session",
		map[string]string{"project_id": f.project.ID, "price_id": "price_pro"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "professional", f.payments.Created[0].Metadata["tier"])

	w = testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session",
		map[string]string{"project_id": f.project.ID, "price_id": "price_unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsOwnedTier(t *testing.T) {
	f := setup(t)
	_, err := f.subs.Upgrade(context.Background(), f.project.ID, 1, plans.TierProfessional)
	require.NoError(t, err)

	w := testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session",
		map[string]string{"project_id": f.project.ID, "tier": "premium"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.payments.Created)
}

func TestCheckoutValidation(t *testing.T) {
	f := setup(t)

	cases := map[string]map[string]string{
		"no tier":    {"project_id": f.project.ID},
		"bad tier":   {"project_id": f.project.ID, "tier": "gold"},
		"free tier":  {"project_id": f.project.ID, "tier": "free"},
		"no project": {"tier": "premium"},
	}
	for name, body := range cases {
		w := testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	w := testutil.DoJSON(f.r, http.MethodPost, "/create-checkout-session",
		map[string]string{"project_id": "someone-elses", "tier": "premium"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionAndPayments(t *testing.T) {
	f := setup(t)
	require.NoError(t, billing.CreatePurchase(f.db, &billing.Purchase{UserID: 1, ProjectID: f.project.ID,
		Tier: "premium", StripeSessionID: "cs_1", AmountCents: 14900}))
	_, _, err := billing.SettleSession(context.Background(), f.db, "cs_1", billing.PurchasePaid, time.Now())
	require.NoError(t, err)

	w := testutil.DoJSON(f.r, http.MethodGet, "/subscription?project_id="+f.project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.Decode(w)
	assert.Equal(t, "premium", body["tier"])
	assert.Equal(t, "Premium", body["label"])
	assert.Len(t, body["purchases"], 1)

	w = testutil.DoJSON(f.r, http.MethodGet, "/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cs_1")

	w = testutil.DoJSON(f.r, http.MethodGet, "/subscription", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutWithoutStripe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, nil, nil, config.Config{}, zap.NewNop())
	r := gin.New()
	r.POST("/create-checkout-session", h.CreateCheckoutSession)

	w := testutil.DoJSON(r, http.MethodPost, "/create-checkout-session", map[string]string{"tier": "premium"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
