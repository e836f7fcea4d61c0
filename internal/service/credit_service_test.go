package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
)

// MockCreditStore is a testify mock of the ledger persistence boundary.
type MockCreditStore struct {
	mock.Mock
}

func (m *MockCreditStore) Apply(userID uint, amount int, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	args := m.Called(userID, amount, txType, relatedPostID, relatedCommentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditStore) GetBalance(userID uint) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditStore) GetUserTransactions(userID uint, page, size int) ([]models.CreditTransaction, int64, error) {
	args := m.Called(userID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.CreditTransaction), args.Get(1).(int64), args.Error(2)
}

// fakeCreditStore reproduces the repository's balance semantics in memory,
// for exercising ledger behavior across sequences of operations.
type fakeCreditStore struct {
	balances map[uint]int
	entries  map[uint][]models.CreditTransaction
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{
		balances: make(map[uint]int),
		entries:  make(map[uint][]models.CreditTransaction),
	}
}

func (f *fakeCreditStore) Apply(userID uint, amount int, txType models.TransactionType, relatedPostID, relatedCommentID *uint) (*models.CreditTransaction, error) {
	newBalance := f.balances[userID] + amount
	if newBalance < 0 {
		return nil, apperrors.Conflict("insufficient credits: you have %d but need %d", f.balances[userID], -amount)
	}
	f.balances[userID] = newBalance
	entry := models.CreditTransaction{
		ID:               uint(len(f.entries[userID]) + 1),
		UserID:           userID,
		Amount:           amount,
		Type:             txType,
		RelatedPostID:    relatedPostID,
		RelatedCommentID: relatedCommentID,
		BalanceAfter:     newBalance,
	}
	f.entries[userID] = append(f.entries[userID], entry)
	return &entry, nil
}

func (f *fakeCreditStore) GetBalance(userID uint) (int, error) {
	return f.balances[userID], nil
}

func (f *fakeCreditStore) GetUserTransactions(userID uint, page, size int) ([]models.CreditTransaction, int64, error) {
	all := f.entries[userID]
	// newest first
	reversed := make([]models.CreditTransaction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		reversed = append(reversed, all[i])
	}
	start := page * size
	if start > len(reversed) {
		start = len(reversed)
	}
	end := start + size
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[start:end], int64(len(all)), nil
}

func TestSpendCreditsRejectsPositiveActions(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	_, err := svc.SpendCredits(1, models.TransactionCommentMarkedHelpful, nil, nil)

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	store.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEarnCreditsRejectsNegativeActions(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	_, err := svc.EarnCredits(1, models.TransactionCreatePost, nil, nil)

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	store.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseTypeHasNoFixedAmount(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	_, err := svc.SpendCredits(1, models.TransactionPurchaseCredits, nil, nil)

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAddPurchasedCreditsRequiresPositiveAmount(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	_, err := svc.AddPurchasedCredits(1, 0)
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.AddPurchasedCredits(1, -25)
	assert.ErrorAs(t, err, &validationErr)
}

func TestSpendCreditsUsesCatalogAmount(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	postID := uint(42)
	store.On("Apply", uint(1), -20, models.TransactionCreatePost, &postID, (*uint)(nil)).
		Return(&models.CreditTransaction{UserID: 1, Amount: -20, BalanceAfter: 5}, nil)

	entry, err := svc.SpendCredits(1, models.TransactionCreatePost, &postID, nil)
	require.NoError(t, err)
	assert.Equal(t, -20, entry.Amount)
	store.AssertExpectations(t)
}

func TestDebitBelowZeroRejectedWithoutEffect(t *testing.T) {
	store := newFakeCreditStore()
	svc := service.NewCreditService(store, zap.NewNop())

	_, err := svc.AddPurchasedCredits(7, 10)
	require.NoError(t, err)

	_, err = svc.SpendCredits(7, models.TransactionCreatePost, nil, nil)
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	balance, err := svc.GetBalance(7)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	// The rejected debit must leave no ledger trace.
	entries, total, err := svc.GetTransactions(7, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionPurchaseCredits, entries[0].Type)
}

func TestLedgerReconcilesAfterMixedOperations(t *testing.T) {
	store := newFakeCreditStore()
	svc := service.NewCreditService(store, zap.NewNop())

	userID := uint(3)
	_, err := svc.AddPurchasedCredits(userID, 25)
	require.NoError(t, err)
	_, err = svc.SpendCredits(userID, models.TransactionCreatePost, nil, nil)
	require.NoError(t, err)
	commentID := uint(9)
	_, err = svc.EarnCredits(userID, models.TransactionCommentMarkedHelpful, nil, &commentID)
	require.NoError(t, err)

	balance, err := svc.GetBalance(userID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	entries, total, err := svc.GetTransactions(userID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)

	// Newest entry's snapshot matches the stored balance, which matches
	// the sum of all entry amounts.
	assert.Equal(t, balance, entries[0].BalanceAfter)
	sum := 0
	for _, e := range entries {
		sum += e.Amount
	}
	assert.Equal(t, balance, sum)
}

func TestGetTransactionsPageHandling(t *testing.T) {
	store := new(MockCreditStore)
	svc := service.NewCreditService(store, zap.NewNop())

	store.On("GetUserTransactions", uint(1), 0, 15).
		Return([]models.CreditTransaction{}, int64(0), nil).Once()
	store.On("GetUserTransactions", uint(1), 9000, 15).
		Return([]models.CreditTransaction{}, int64(1), nil).Once()

	// Negative pages normalize to the first page.
	_, _, err := svc.GetTransactions(1, -4)
	require.NoError(t, err)

	// A page past the end passes through; the offset yields an empty page
	// with the real total.
	entries, total, err := svc.GetTransactions(1, 9000)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, int64(1), total)
	store.AssertExpectations(t)
}
