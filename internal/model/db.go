package model

import "time"

const (
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"

	PaymentTypeOneTime               = "one_time"
	PaymentTypeSubscriptionInitial   = "subscription_initial"
	PaymentTypeSubscriptionRecurring = "subscription_recurring"

	EnrollmentStatusActive    = "active"
	EnrollmentStatusCancelled = "cancelled"

	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// Profile is the internal projection of an auth user. The auth service owns the
// account; a profile row may lag behind it (see service.IdentityResolver).
type Profile struct {
	ID        string `gorm:"primaryKey;size:64;not null"` // auth user id
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	FullName  string `gorm:"size:255"`
	Phone     string `gorm:"size:32"`
	City      string `gorm:"size:128"`
	State     string `gorm:"size:128"`
	Country   string `gorm:"size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order is the append-only payment ledger. IdempotencyKey is the Stripe
// checkout session id for one-time/initial payments and the invoice id for
// recurring charges; the unique index is what makes redelivered webhooks safe.
type Order struct {
	ID             uint    `gorm:"primaryKey"`
	IdempotencyKey string  `gorm:"size:128;uniqueIndex;not null"`
	UserID         *string `gorm:"size:64;index"` // nil when email resolution failed
	Email          string  `gorm:"size:255;index"`
	Amount         int64   `gorm:"not null"` // minor units
	Currency       string  `gorm:"size:8;not null"`
	ProductName    string  `gorm:"size:255"`
	ProductID      *string `gorm:"size:64;index"`
	PaymentType    string  `gorm:"size:32;not null"` // one_time | subscription_initial | subscription_recurring
	Status         string  `gorm:"size:32;index;not null"`
	RefundAmount   *int64
	RefundedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Enrollment struct {
	ID         uint    `gorm:"primaryKey"`
	UserID     string  `gorm:"size:64;not null;uniqueIndex:idx_enrollments_user_product"`
	ProductID  string  `gorm:"size:64;not null;uniqueIndex:idx_enrollments_user_product"`
	CourseName string  `gorm:"size:255"`
	CohortID   *string `gorm:"size:64"`
	Status     string  `gorm:"size:32;index;not null"` // active | cancelled
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AutoEnrollRule assigns a default cohort when a product is purchased without
// an explicit cohort choice.
type AutoEnrollRule struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"size:64;uniqueIndex;not null"`
	CohortID  string `gorm:"size:64;not null"`
	CreatedAt time.Time
}

// SubscriptionState is the single current billing snapshot per user,
// fully overwritten on every subscription lifecycle event.
type SubscriptionState struct {
	UserID               string `gorm:"primaryKey;size:64"`
	Status               string `gorm:"size:32;not null"` // trial | active | expired | cancelled
	Platform             string `gorm:"size:32"`
	StripeSubscriptionID string `gorm:"size:64;index"`
	StripeCustomerID     string `gorm:"size:64;index"`
	ExpiresAt            *time.Time
	TrialEndsAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Product is the course catalog entry keyed by the product identifier carried
// in checkout metadata.
type Product struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	Name          string `gorm:"size:255;not null"`
	CourseName    string `gorm:"size:255"`
	MarketingTags string `gorm:"size:512"` // comma separated
	Price         int64  `gorm:"not null"`
	Currency      string `gorm:"size:8;not null"`
	CreatedAt     time.Time
}

// WebhookEvent records every event we finished processing, for audit only.
// Idempotency is enforced through the Order ledger, not this table.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
