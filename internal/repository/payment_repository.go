package repository

import (
	"github.com/verifico/verifico-backend/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment row. The unique indexes on idempotency_key
// and provider_intent_id surface racing duplicates as gorm.ErrDuplicatedKey.
func (r *PaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("idempotency_key = ?", key).First(&payment).Error
	return &payment, err
}

func (r *PaymentRepository) GetByProviderIntentID(intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("provider_intent_id = ?", intentID).First(&payment).Error
	return &payment, err
}

func (r *PaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// SettleSucceeded awards the purchased credits and moves the payment to
// SUCCEEDED with credits_awarded set, all in one transaction. A redelivered
// event therefore sees either the untouched PENDING row or the fully settled
// one; a credited-but-still-pending state cannot be observed.
func (r *PaymentRepository) SettleSucceeded(payment *models.Payment, credits int) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := applyCreditTx(tx, payment.UserID, credits, models.TransactionPurchaseCredits, nil, nil); err != nil {
			return err
		}
		return tx.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":          models.PaymentStatusSucceeded,
				"credits_awarded": true,
			}).Error
	})
	if err != nil {
		return err
	}

	payment.Status = models.PaymentStatusSucceeded
	payment.CreditsAwarded = true
	return nil
}

func (r *PaymentRepository) GetUserPayments(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
