package plans

import "strings"

// Tier is a subscription level. Ordering: free < premium < professional.
type Tier string

const (
	TierFree         Tier = "free"
	TierPremium      Tier = "premium"
	TierProfessional Tier = "professional"
)

var tierRank = map[Tier]int{
	TierFree:         0,
	TierPremium:      1,
	TierProfessional: 2,
}

// ParseTier normalizes s into a known tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := tierRank[t]
	return t, ok
}

// Rank returns the position of t in the tier ordering. Unknown tiers rank as free.
func (t Tier) Rank() int {
	return tierRank[t]
}

// AtLeast reports whether t grants everything other grants.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// Label is the display name used in upgrade prompts.
func (t Tier) Label() string {
	switch t {
	case TierPremium:
		return "Premium"
	case TierProfessional:
		return "Professional"
	default:
		return "Free"
	}
}

// MaxTier returns the higher of a and b.
func MaxTier(a, b Tier) Tier {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference by price
func PlanTier(p *Plan) Tier {
	if p == nil {
		return TierFree
	}
	if t, ok := ParseTier(p.Tier); ok && t != TierFree {
		return t
	}
	return inferTierFromPrice(p.PriceCents)
}

// inferTierFromPrice covers Stripe prices synced before the tier metadata existed.
func inferTierFromPrice(priceCents int64) Tier {
	if priceCents >= 29900 {
		return TierProfessional
	}
	return TierPremium
}
