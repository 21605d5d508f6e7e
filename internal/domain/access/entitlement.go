package access

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"highlight-api/internal/domain/plans"
	"highlight-api/internal/infra/metrics"

	"go.uber.org/zap"
)

// Entitlement is the resolved access decision for one feature.
type Entitlement struct {
	Feature        string     `json:"feature"`
	HasAccess      bool       `json:"hasAccess"`
	RequiredTier   plans.Tier `json:"requiredTier"`
	CurrentTier    plans.Tier `json:"currentTier"`
	UpgradeMessage string     `json:"upgradeMessage"`
}

// TierLookup returns the subscription tier that currently applies to a project.
// Implementations return plans.TierFree when the project has no subscription.
type TierLookup interface {
	ProjectTier(ctx context.Context, projectID string) (plans.Tier, error)
}

type Resolver struct {
	tiers TierLookup
	log   *zap.Logger
}

func NewResolver(tiers TierLookup, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{tiers: tiers, log: log}
}

// Resolve decides whether feature is available. Without a project id the account
// default (free) applies. Lookup failures are logged and resolve to free.
func (r *Resolver) Resolve(ctx context.Context, feature string, projectID *string) Entitlement {
	current := r.CurrentTier(ctx, projectID)
	ent := Decide(feature, current)
	metrics.EntitlementChecks.WithLabelValues(feature, strconv.FormatBool(ent.HasAccess)).Inc()
	return ent
}

// CurrentTier returns the tier in effect for projectID (free when nil or unknown).
func (r *Resolver) CurrentTier(ctx context.Context, projectID *string) plans.Tier {
	if projectID == nil || strings.TrimSpace(*projectID) == "" || r.tiers == nil {
		return plans.TierFree
	}
	tier, err := r.tiers.ProjectTier(ctx, strings.TrimSpace(*projectID))
	if err != nil {
		r.log.Warn("subscription lookup failed, defaulting to free",
			zap.String("project_id", *projectID), zap.Error(err))
		return plans.TierFree
	}
	if _, ok := plans.ParseTier(string(tier)); !ok {
		return plans.TierFree
	}
	return tier
}

// Decide is the pure entitlement rule for a known current tier.
func Decide(feature string, current plans.Tier) Entitlement {
	required := RequiredTier(feature)
	ent := Entitlement{
		Feature:      feature,
		HasAccess:    current.AtLeast(required),
		RequiredTier: required,
		CurrentTier:  current,
	}
	if !ent.HasAccess {
		ent.UpgradeMessage = fmt.Sprintf("%s is available on the %s plan. Upgrade to unlock it.",
			FeatureLabel(feature), required.Label())
	}
	return ent
}
