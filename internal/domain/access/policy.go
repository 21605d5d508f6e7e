package access

import "highlight-api/internal/domain/plans"

type Quality string

const (
	QualitySD Quality = "sd"
	QualityHD Quality = "hd"
	Quality4K Quality = "4k"
)

// Policy summarizes what a project's tier unlocks, for the subscription and share views.
type Policy struct {
	Tier         plans.Tier `json:"tier"`
	Capabilities []string   `json:"capabilities"`
	MaxQuality   Quality    `json:"maxQuality"`
	Watermark    bool       `json:"watermark"`
}

func PolicyFor(tier plans.Tier) Policy {
	return Policy{
		Tier:         tier,
		Capabilities: CapabilitiesFor(tier),
		MaxQuality:   MaxQualityFor(tier),
		Watermark:    !Decide(FeatureRemoveWatermark, tier).HasAccess,
	}
}

func MaxQualityFor(tier plans.Tier) Quality {
	switch {
	case Decide(Feature4KQuality, tier).HasAccess:
		return Quality4K
	case Decide(FeatureHDQuality, tier).HasAccess:
		return QualityHD
	default:
		return QualitySD
	}
}
