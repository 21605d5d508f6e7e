package billing

import (
	"context"
	"errors"
	"time"

	"highlight-api/internal/domain/plans"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

// SubscriptionStore reads and writes project tiers.
type SubscriptionStore struct {
	db *gorm.DB
}

func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// ProjectTier returns the project's tier, free when no subscription row exists.
func (s *SubscriptionStore) ProjectTier(ctx context.Context, projectID string) (plans.Tier, error) {
	var sub Subscription
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return plans.TierFree, nil
	}
	if err != nil {
		return plans.TierFree, err
	}
	tier, ok := plans.ParseTier(sub.Tier)
	if !ok {
		return plans.TierFree, nil
	}
	return tier, nil
}

// Ensure creates the free subscription row for a new project.
func (s *SubscriptionStore) Ensure(ctx context.Context, projectID string, userID uint) error {
	sub := Subscription{ProjectID: projectID, UserID: userID, Tier: string(plans.TierFree)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "project_id"}}, DoNothing: true}).
		Create(&sub).Error
}

// Upgrade raises the project's tier to tier. An existing higher tier is kept.
func (s *SubscriptionStore) Upgrade(ctx context.Context, projectID string, userID uint, tier plans.Tier) (plans.Tier, error) {
	var result plans.Tier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = upgradeTier(tx, projectID, userID, tier)
		return err
	})
	return result, err
}

func upgradeTier(tx *gorm.DB, projectID string, userID uint, tier plans.Tier) (plans.Tier, error) {
	var sub Subscription
	err := tx.Where("project_id = ?", projectID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = Subscription{ProjectID: projectID, UserID: userID, Tier: string(tier)}
		return tier, tx.Create(&sub).Error
	}
	if err != nil {
		return "", err
	}

	current, _ := plans.ParseTier(sub.Tier)
	next := plans.MaxTier(current, tier)
	if next == current {
		return current, nil
	}
	return next, tx.Model(&Subscription{}).Where("id = ?", sub.ID).Update("tier", string(next)).Error
}

// CreatePurchase records a pending checkout session.
func CreatePurchase(db *gorm.DB, p *Purchase) error {
	if p.Status == "" {
		p.Status = PurchasePending
	}
	return db.Create(p).Error
}

func FindPurchaseBySession(db *gorm.DB, sessionID string) (Purchase, error) {
	var p Purchase
	err := db.Where("stripe_session_id = ?", sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Purchase{}, ErrPurchaseNotFound
	}
	return p, err
}

func ListPurchases(db *gorm.DB, userID uint, projectID string) ([]Purchase, error) {
	q := db.Where("user_id = ?", userID)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var out []Purchase
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

// SettleSession applies a checkout session's payment status to its purchase.
// Only "paid" changes anything: the purchase is marked paid and the project's
// tier is raised. Repeated settlement of a paid purchase is a no-op.
func SettleSession(ctx context.Context, db *gorm.DB, sessionID, paymentStatus string, now time.Time) (Purchase, bool, error) {
	if paymentStatus != PurchasePaid {
		return Purchase{}, false, nil
	}

	var purchase Purchase
	changed := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("stripe_session_id = ?", sessionID).First(&purchase).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseNotFound
		}
		if err != nil {
			return err
		}
		if purchase.Status == PurchasePaid {
			return nil
		}

		purchase.Status = PurchasePaid
		purchase.PaidAt = &now
		if err := tx.Model(&Purchase{}).Where("id = ?", purchase.ID).Updates(map[string]interface{}{
			"status":  PurchasePaid,
			"paid_at": now,
		}).Error; err != nil {
			return err
		}

		tier, ok := plans.ParseTier(purchase.Tier)
		if !ok {
			return errors.New("purchase has unknown tier " + purchase.Tier)
		}
		if _, err := upgradeTier(tx, purchase.ProjectID, purchase.UserID, tier); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return purchase, changed, err
}

// FailSession marks a still-pending purchase failed (expired or declined checkout).
func FailSession(db *gorm.DB, sessionID string) (bool, error) {
	res := db.Model(&Purchase{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, PurchasePending).
		Update("status", PurchaseFailed)
	return res.RowsAffected > 0, res.Error
}

// RevenueCents sums paid purchases.
func RevenueCents(db *gorm.DB) (int64, error) {
	return RevenueCentsSince(db, time.Time{})
}

// RevenueCentsSince sums purchases paid at or after since.
func RevenueCentsSince(db *gorm.DB, since time.Time) (int64, error) {
	var total int64
	q := db.Model(&Purchase{}).Where("status = ?", PurchasePaid)
	if !since.IsZero() {
		q = q.Where("paid_at >= ?", since)
	}
	err := q.Select("COALESCE(SUM(amount_cents), 0)").Scan(&total).Error
	return total, err
}

// TierCount is one row of the projects-per-tier breakdown.
type TierCount struct {
	Tier  string `json:"tier"`
	Count int64  `json:"count"`
}

func CountByTier(db *gorm.DB) ([]TierCount, error) {
	var out []TierCount
	err := db.Model(&Subscription{}).
		Select("tier, COUNT(id) AS count").
		Group("tier").
		Order("tier").
		Scan(&out).Error
	return out, err
}
