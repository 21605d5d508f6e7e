package plans

import "time"

// Plan is a purchasable tier, mirrored from a one-time Stripe price.
type Plan struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `json:"name"`
	Tier          string `gorm:"column:tier;not null" json:"tier"` // "premium" | "professional"
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id"`
	StripeProdID  string `gorm:"column:stripe_product_id;index" json:"stripe_product_id"`
	Active        bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
