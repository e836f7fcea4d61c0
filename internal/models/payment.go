package models

import "time"

// CreditPackage is the fixed set of purchasable credit bundles. Free-form
// amounts are not sold; prices and credit yields live in internal/catalog.
type CreditPackage string

const (
	PackageBuy25Credits  CreditPackage = "BUY_25_CREDITS"
	PackageBuy50Credits  CreditPackage = "BUY_50_CREDITS"
	PackageBuy75Credits  CreditPackage = "BUY_75_CREDITS"
	PackageBuy150Credits CreditPackage = "BUY_150_CREDITS"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is one row per purchase attempt. Rows are never deleted; the
// unique indexes on IdempotencyKey and ProviderIntentID are what make
// concurrent duplicate requests safe.
type Payment struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	IdempotencyKey   string        `json:"-" gorm:"uniqueIndex;not null"`
	ProviderIntentID string        `json:"provider_intent_id" gorm:"uniqueIndex;not null"`
	PurchasedPackage CreditPackage `json:"purchased_package" gorm:"not null"`
	AmountInCents    int64         `json:"amount_in_cents" gorm:"not null"`
	UserID           uint          `json:"user_id" gorm:"not null;index"`
	Status           PaymentStatus `json:"status" gorm:"not null;default:'PENDING'"`
	CreditsAwarded   bool          `json:"credits_awarded" gorm:"not null;default:false"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type PurchaseCreditsRequest struct {
	Amount   CreditPackage `json:"amount" validate:"required"`
	Quantity int           `json:"quantity" validate:"required"`
	Currency string        `json:"currency" validate:"required,len=3"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type PackageListing struct {
	Package      CreditPackage `json:"package"`
	PriceInCents int64         `json:"price_in_cents"`
	Credits      int           `json:"credits"`
}
