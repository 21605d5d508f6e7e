package plans

import (
	"testing"

	"highlight-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAndFind(t *testing.T) {
	db := testutil.NewDB(t, &Plan{})

	created, err := Upsert(db, Plan{Name: "Premium", Tier: "premium", PriceCents: 14900, Currency: "eur", StripePriceID: "price_p"})
	require.NoError(t, err)
	assert.True(t, created)
	_, err = Upsert(db, Plan{Name: "Professional", Tier: "professional", PriceCents: 29900, Currency: "eur", StripePriceID: "price_pro"})
	require.NoError(t, err)

	created, err = Upsert(db, Plan{Name: "Premium+", Tier: "premium", PriceCents: 15900, Currency: "eur", StripePriceID: "price_p"})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := FindByPriceID(db, "price_p")
	require.NoError(t, err)
	assert.Equal(t, "Premium+", p.Name)
	assert.Equal(t, int64(15900), p.PriceCents)

	p, err = FindForTier(db, TierProfessional)
	require.NoError(t, err)
	assert.Equal(t, "price_pro", p.StripePriceID)

	_, err = FindForTier(db, TierFree)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateMissing(t *testing.T) {
	db := testutil.NewDB(t, &Plan{})
	for _, id := range []string{"price_a", "price_b"} {
		_, err := Upsert(db, Plan{Name: id, Tier: "premium", StripePriceID: id})
		require.NoError(t, err)
	}

	n, err := DeactivateMissing(db, []string{"price_a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := ListActive(db, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "price_a", list[0].StripePriceID)

	_, err = FindByPriceID(db, "price_b")
	assert.ErrorIs(t, err, ErrNotFound)
}
