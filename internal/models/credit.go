package models

import "time"

type TransactionType string

const (
	TransactionCreatePost           TransactionType = "CREATE_POST"
	TransactionBoostPost            TransactionType = "BOOST_POST"
	TransactionCommentMarkedHelpful TransactionType = "COMMENT_MARKED_HELPFUL"
	TransactionPurchaseCredits      TransactionType = "PURCHASE_CREDITS"
)

// CreditTransaction is an append-only ledger entry. Entries are never
// mutated or deleted; BalanceAfter snapshots the user's balance at commit
// time so the full history reconciles against the stored balance.
type CreditTransaction struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	UserID           uint            `json:"user_id" gorm:"not null;index:idx_user_created"`
	Amount           int             `json:"amount" gorm:"not null"`
	Type             TransactionType `json:"type" gorm:"column:transaction_type;not null"`
	RelatedPostID    *uint           `json:"related_post_id,omitempty"`
	RelatedCommentID *uint           `json:"related_comment_id,omitempty"`
	BalanceAfter     int             `json:"balance_after" gorm:"not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index:idx_user_created"`
}
