package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allTiers = []Tier{TierFree, TierPremium, TierProfessional}

func TestTierOrdering(t *testing.T) {
	for i, lower := range allTiers {
		for j, higher := range allTiers {
			assert.Equal(t, j >= i, higher.AtLeast(lower), "%s >= %s", higher, lower)
		}
	}
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier(" Professional ")
	assert.True(t, ok)
	assert.Equal(t, TierProfessional, tier)

	_, ok = ParseTier("enterprise")
	assert.False(t, ok)
}

func TestMaxTier(t *testing.T) {
	assert.Equal(t, TierProfessional, MaxTier(TierProfessional, TierPremium))
	assert.Equal(t, TierPremium, MaxTier(TierFree, TierPremium))
	assert.Equal(t, TierFree, MaxTier(TierFree, TierFree))
}

func TestPlanTier(t *testing.T) {
	assert.Equal(t, TierFree, PlanTier(nil))
	assert.Equal(t, TierProfessional, PlanTier(&Plan{Tier: "professional", PriceCents: 100}))
	assert.Equal(t, TierPremium, PlanTier(&Plan{PriceCents: 9900}))
	assert.Equal(t, TierProfessional, PlanTier(&Plan{PriceCents: 34900}))
}
