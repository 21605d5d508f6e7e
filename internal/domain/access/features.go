package access

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"highlight-api/internal/domain/plans"
)

// Feature identifiers checked by the API.
const (
	Feature4KQuality          = "4k_quality"
	FeatureCustomBranding     = "custom_branding"
	FeatureLiveFeed           = "live_feed"
	FeatureRawFootageDownload = "raw_footage_download"
	FeaturePriorityProcessing = "priority_processing"

	FeatureGuestUploads    = "guest_uploads"
	FeatureHDQuality       = "hd_quality"
	FeatureShareLinks      = "share_links"
	FeatureRemoveWatermark = "remove_watermark"
)

// professionalFeatures is the fixed set gated on the professional tier.
// Every other feature name requires premium.
var professionalFeatures = map[string]struct{}{
	Feature4KQuality:          {},
	FeatureCustomBranding:     {},
	FeatureLiveFeed:           {},
	FeatureRawFootageDownload: {},
	FeaturePriorityProcessing: {},
}

var featureLabels = map[string]string{
	Feature4KQuality:          "4K quality",
	FeatureCustomBranding:     "Custom branding",
	FeatureLiveFeed:           "Live feed",
	FeatureRawFootageDownload: "Raw footage download",
	FeaturePriorityProcessing: "Priority processing",
	FeatureGuestUploads:       "Guest uploads",
	FeatureHDQuality:          "HD quality",
	FeatureShareLinks:         "Share links",
	FeatureRemoveWatermark:    "Watermark removal",
}

// RequiredTier returns the lowest tier that unlocks feature.
func RequiredTier(feature string) plans.Tier {
	if _, ok := professionalFeatures[feature]; ok {
		return plans.TierProfessional
	}
	return plans.TierPremium
}

// FeatureLabel returns a display name for feature.
func FeatureLabel(feature string) string {
	if label, ok := featureLabels[feature]; ok {
		return label
	}
	label := strings.TrimSpace(strings.ReplaceAll(feature, "_", " "))
	if label == "" {
		return "This feature"
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}
