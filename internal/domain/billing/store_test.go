package billing

import (
	"context"
	"testing"
	"time"

	"highlight-api/internal/domain/plans"
	"highlight-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectTierDefaultsToFree(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	store := NewSubscriptionStore(db)

	tier, err := store.ProjectTier(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, plans.TierFree, tier)
}

func TestUpgradeNeverLowersTier(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	store := NewSubscriptionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Ensure(ctx, "p1", 1))
	require.NoError(t, store.Ensure(ctx, "p1", 1))

	got, err := store.Upgrade(ctx, "p1", 1, plans.TierProfessional)
	require.NoError(t, err)
	assert.Equal(t, plans.TierProfessional, got)

	got, err = store.Upgrade(ctx, "p1", 1, plans.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, plans.TierProfessional, got)

	tier, err := store.ProjectTier(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, plans.TierProfessional, tier)
}

func TestSettleSessionOnlyPaidFlips(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	ctx := context.Background()
	require.NoError(t, CreatePurchase(db, &Purchase{UserID: 1, ProjectID: "p1", Tier: "premium", StripeSessionID: "cs_1", AmountCents: 9900}))

	for _, status := range []string{"unpaid", "no_payment_required", ""} {
		_, changed, err := SettleSession(ctx, db, "cs_1", status, time.Now())
		require.NoError(t, err)
		assert.False(t, changed)
	}

	var paid int64
	require.NoError(t, db.Model(&Purchase{}).Where("status = ?", PurchasePaid).Count(&paid).Error)
	assert.Zero(t, paid)
	tier, _ := NewSubscriptionStore(db).ProjectTier(ctx, "p1")
	assert.Equal(t, plans.TierFree, tier)
}

func TestSettleSessionPaid(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	ctx := context.Background()
	require.NoError(t, CreatePurchase(db, &Purchase{UserID: 1, ProjectID: "p1", Tier: "premium", StripeSessionID: "cs_1", AmountCents: 9900}))

	p, changed, err := SettleSession(ctx, db, "cs_1", "paid", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PurchasePaid, p.Status)

	_, changed, err = SettleSession(ctx, db, "cs_1", "paid", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	tier, err := NewSubscriptionStore(db).ProjectTier(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, plans.TierPremium, tier)

	total, err := RevenueCents(db)
	require.NoError(t, err)
	assert.EqualValues(t, 9900, total)
}

func TestSettleSessionUnknown(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	_, _, err := SettleSession(context.Background(), db, "cs_x", "paid", time.Now())
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestFailSessionOnlyTouchesPending(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	ctx := context.Background()
	require.NoError(t, CreatePurchase(db, &Purchase{UserID: 1, ProjectID: "p1", Tier: "premium", StripeSessionID: "cs_1"}))
	require.NoError(t, CreatePurchase(db, &Purchase{UserID: 1, ProjectID: "p2", Tier: "premium", StripeSessionID: "cs_2"}))
	_, _, err := SettleSession(ctx, db, "cs_2", "paid", time.Now())
	require.NoError(t, err)

	changed, err := FailSession(db, "cs_1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = FailSession(db, "cs_2")
	require.NoError(t, err)
	assert.False(t, changed)

	p, err := FindPurchaseBySession(db, "cs_2")
	require.NoError(t, err)
	assert.Equal(t, PurchasePaid, p.Status)
}

func TestCountByTier(t *testing.T) {
	db := testutil.NewDB(t, &Subscription{}, &Purchase{})
	store := NewSubscriptionStore(db)
	ctx := context.Background()
	require.NoError(t, store.Ensure(ctx, "p1", 1))
	require.NoError(t, store.Ensure(ctx, "p2", 1))
	_, err := store.Upgrade(ctx, "p3", 2, plans.TierProfessional)
	require.NoError(t, err)

	counts, err := CountByTier(db)
	require.NoError(t, err)
	assert.Equal(t, []TierCount{{Tier: "free", Count: 2}, {Tier: "professional", Count: 1}}, counts)
}
