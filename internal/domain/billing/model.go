package billing

import "time"

const (
	PurchasePending = "pending"
	PurchasePaid    = "paid"
	PurchaseFailed  = "failed"
)

// Subscription is the tier currently applied to one project.
type Subscription struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_project_id" json:"projectId"`
	UserID    uint   `gorm:"not null;index" json:"userId"`
	Tier      string `gorm:"type:varchar(20);not null;default:'free'" json:"tier"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Purchase records one checkout session for a project tier.
type Purchase struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"userId"`
	ProjectID       string     `gorm:"type:uuid;not null;index" json:"projectId"`
	PlanID          *uint      `json:"planId,omitempty"`
	Tier            string     `gorm:"type:varchar(20);not null" json:"tier"`
	StripeSessionID string     `gorm:"not null;uniqueIndex:idx_purchases_stripe_session_id" json:"stripeSessionId"`
	AmountCents     int64      `json:"amountCents"`
	Currency        string     `json:"currency"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
