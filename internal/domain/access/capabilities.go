package access

import "highlight-api/internal/domain/plans"

// Catalog lists every feature the product gates, in display order.
var Catalog = []string{
	FeatureHDQuality,
	FeatureShareLinks,
	FeatureGuestUploads,
	FeatureRemoveWatermark,
	Feature4KQuality,
	FeatureCustomBranding,
	FeatureLiveFeed,
	FeatureRawFootageDownload,
	FeaturePriorityProcessing,
}

// CapabilitiesFor returns the catalog features unlocked by tier.
func CapabilitiesFor(tier plans.Tier) []string {
	caps := []string{}
	for _, f := range Catalog {
		if tier.AtLeast(RequiredTier(f)) {
			caps = append(caps, f)
		}
	}
	return caps
}
