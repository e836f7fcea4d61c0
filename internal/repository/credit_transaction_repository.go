package repository

import (
	"errors"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditTransactionRepository struct {
	db *gorm.DB
}

func NewCreditTransactionRepository(db *gorm.DB) *CreditTransactionRepository {
	return &CreditTransactionRepository{db: db}
}

// Apply mutates the user's balance and appends the matching ledger entry in
// a single transaction. The user row is locked for the duration, so two
// concurrent spends cannot both read a stale balance. A debit that would
// drive the balance below zero aborts the transaction with a ConflictError.
func (r *CreditTransactionRepository) Apply(userID uint, amount int, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	var entry *models.CreditTransaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = applyCreditTx(tx, userID, amount, txType, relatedPostID, relatedCommentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// applyCreditTx runs the locked balance mutation and the ledger append on the
// caller's transaction. Writes that must commit together with an award (the
// payment status flip, the comment helpful flag) compose it inside their own
// db.Transaction so a failure rolls back the credit as well.
func applyCreditTx(tx *gorm.DB, userID uint, amount int, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}

	newBalance := user.Credits + amount
	if newBalance < 0 {
		return nil, apperrors.Conflict(
			"insufficient credits: you have %d but need %d. Either buy more or contribute to the community",
			user.Credits, -amount)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("credits", newBalance).Error; err != nil {
		return nil, err
	}

	entry := &models.CreditTransaction{
		UserID:           user.ID,
		Amount:           amount,
		Type:             txType,
		RelatedPostID:    relatedPostID,
		RelatedCommentID: relatedCommentID,
		BalanceAfter:     newBalance,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *CreditTransactionRepository) GetBalance(userID uint) (int, error) {
	var user models.User
	if err := r.db.Select("credits").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("user not found")
		}
		return 0, err
	}
	return user.Credits, nil
}

func (r *CreditTransactionRepository) GetUserTransactions(userID uint, page, size int) ([]models.CreditTransaction, int64, error) {
	var total int64
	if err := r.db.Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []models.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&transactions).Error
	return transactions, total, err
}
