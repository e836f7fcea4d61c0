package service

import (
	"go.uber.org/zap"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/catalog"
	"github.com/verifico/verifico-backend/internal/models"
)

const transactionPageSize = 15

// CreditStore is the ledger's persistence boundary. Apply must commit the
// balance change and the ledger entry atomically.
type CreditStore interface {
	Apply(userID uint, amount int, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error)
	GetBalance(userID uint) (int, error)
	GetUserTransactions(userID uint, page, size int) ([]models.CreditTransaction, int64, error)
}

type CreditService struct {
	store  CreditStore
	logger *zap.Logger
}

func NewCreditService(store CreditStore, logger *zap.Logger) *CreditService {
	return &CreditService{
		store:  store,
		logger: logger,
	}
}

// EarnCredits applies a fixed positive action amount from the catalog.
func (s *CreditService) EarnCredits(userID uint, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	amount, err := catalog.ActionAmount(txType)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if amount <= 0 {
		return nil, apperrors.Validation("EarnCredits cannot be used for negative transactions")
	}

	entry, err := s.store.Apply(userID, amount, txType, relatedPostID, relatedCommentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credits earned",
		zap.Uint("user_id", userID),
		zap.String("type", string(txType)),
		zap.Int("amount", amount),
		zap.Int("balance_after", entry.BalanceAfter))
	return entry, nil
}

// SpendCredits applies a fixed negative action amount from the catalog.
// Insufficient balance surfaces as a ConflictError with no effect.
func (s *CreditService) SpendCredits(userID uint, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	amount, err := catalog.ActionAmount(txType)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if amount >= 0 {
		return nil, apperrors.Validation("SpendCredits cannot be used for positive transactions")
	}

	entry, err := s.store.Apply(userID, amount, txType, relatedPostID, relatedCommentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credits spent",
		zap.Uint("user_id", userID),
		zap.String("type", string(txType)),
		zap.Int("amount", amount),
		zap.Int("balance_after", entry.BalanceAfter))
	return entry, nil
}

// AddPurchasedCredits credits a purchase amount to the ledger. The amount
// comes from the purchased package, never from the client. Webhook
// settlement awards through the payment store instead, so the credit and
// the status flip share one transaction.
func (s *CreditService) AddPurchasedCredits(userID uint, amount int) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("purchased credit amount must be positive")
	}

	entry, err := s.store.Apply(userID, amount, models.TransactionPurchaseCredits, nil, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchased credits added",
		zap.Uint("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("balance_after", entry.BalanceAfter))
	return entry, nil
}

func (s *CreditService) GetBalance(userID uint) (int, error) {
	return s.store.GetBalance(userID)
}

// GetTransactions returns the user's ledger history, newest first. A page
// beyond the end comes back empty.
func (s *CreditService) GetTransactions(userID uint, page int) ([]models.CreditTransaction, int64, error) {
	if page < 0 {
		page = 0
	}
	return s.store.GetUserTransactions(userID, page, transactionPageSize)
}
