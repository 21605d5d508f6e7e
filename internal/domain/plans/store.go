package plans

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("plan not found")

// ListActive returns the pricing table, cheapest first. productID narrows it to one Stripe product.
func ListActive(db *gorm.DB, productID string) ([]Plan, error) {
	q := db.Where("active = ?", true)
	if productID != "" {
		q = q.Where("stripe_product_id = ?", productID)
	}
	var out []Plan
	err := q.Order("price_cents ASC").Find(&out).Error
	return out, err
}

func FindByPriceID(db *gorm.DB, priceID string) (Plan, error) {
	var p Plan
	err := db.Where("stripe_price_id = ? AND active = ?", priceID, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Plan{}, ErrNotFound
	}
	return p, err
}

// FindForTier returns the cheapest active plan selling tier.
func FindForTier(db *gorm.DB, tier Tier) (Plan, error) {
	var p Plan
	err := db.Where("tier = ? AND active = ?", string(tier), true).Order("price_cents ASC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Plan{}, ErrNotFound
	}
	return p, err
}

// Upsert creates or refreshes the plan keyed by its Stripe price id.
// It reports whether a new row was created.
func Upsert(db *gorm.DB, in Plan) (bool, error) {
	var existing Plan
	err := db.Where("stripe_price_id = ?", in.StripePriceID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		in.Active = true
		return true, db.Create(&in).Error
	}
	if err != nil {
		return false, err
	}

	existing.Name = in.Name
	existing.Tier = in.Tier
	existing.PriceCents = in.PriceCents
	existing.Currency = in.Currency
	existing.StripeProdID = in.StripeProdID
	existing.Active = true
	return false, db.Save(&existing).Error
}

// DeactivateMissing hides plans whose Stripe price was not seen in the last sync.
func DeactivateMissing(db *gorm.DB, seenPriceIDs []string) (int64, error) {
	q := db.Model(&Plan{}).Where("active = ?", true)
	if len(seenPriceIDs) > 0 {
		q = q.Where("stripe_price_id NOT IN ?", seenPriceIDs)
	}
	res := q.Update("active", false)
	return res.RowsAffected, res.Error
}
