package service_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
	"github.com/verifico/verifico-backend/pkg/cache"
)

// fakePaymentStore keeps payments in memory, enforces the same unique
// constraints the real table carries, and settles against the shared credit
// store the way the repository does in one transaction.
type fakePaymentStore struct {
	byKey    map[string]*models.Payment
	byIntent map[string]*models.Payment
	credits  *fakeCreditStore
	nextID   uint
}

func newFakePaymentStore(credits *fakeCreditStore) *fakePaymentStore {
	return &fakePaymentStore{
		byKey:    make(map[string]*models.Payment),
		byIntent: make(map[string]*models.Payment),
		credits:  credits,
		nextID:   1,
	}
}

func (f *fakePaymentStore) Create(payment *models.Payment) error {
	if _, exists := f.byKey[payment.IdempotencyKey]; exists {
		return gorm.ErrDuplicatedKey
	}
	if _, exists := f.byIntent[payment.ProviderIntentID]; exists {
		return gorm.ErrDuplicatedKey
	}
	payment.ID = f.nextID
	f.nextID++
	f.byKey[payment.IdempotencyKey] = payment
	f.byIntent[payment.ProviderIntentID] = payment
	return nil
}

func (f *fakePaymentStore) GetByIdempotencyKey(key string) (*models.Payment, error) {
	p, ok := f.byKey[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePaymentStore) GetByProviderIntentID(intentID string) (*models.Payment, error) {
	p, ok := f.byIntent[intentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePaymentStore) SettleSucceeded(payment *models.Payment, credits int) error {
	if _, err := f.credits.Apply(payment.UserID, credits, models.TransactionPurchaseCredits, nil, nil); err != nil {
		return err
	}
	payment.Status = models.PaymentStatusSucceeded
	payment.CreditsAwarded = true
	return nil
}

func (f *fakePaymentStore) Update(payment *models.Payment) error {
	return nil
}

func (f *fakePaymentStore) GetUserPayments(userID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.byIntent {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// TestPurchaseFlowEndToEnd walks a full purchase: a fresh user buys the 25
// credit package, the provider confirms asynchronously, and the ledger ends
// up with exactly one award no matter how often the event is redelivered.
func TestPurchaseFlowEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	idempotencyCache := cache.NewIdempotencyCache(client)

	creditStore := newFakeCreditStore()
	creditService := service.NewCreditService(creditStore, zap.NewNop())

	paymentStore := newFakePaymentStore(creditStore)
	gateway := new(MockStripeGateway)
	users := &fakeUserGetter{user: &models.User{ID: 1, Username: "johndoe", Email: "john@example.com"}}
	receipts := newFakeReceiptSender()

	svc := service.NewPaymentService(paymentStore, users, idempotencyCache, gateway, receipts, zap.NewNop())

	balance, err := creditService.GetBalance(1)
	require.NoError(t, err)
	require.Equal(t, 0, balance)

	gateway.On("CreatePaymentIntent", int64(399), "usd", "abc", mock.Anything).
		Return(&stripe.PaymentIntent{ID: "pi_123", ClientSecret: "secret_123"}, nil).Once()

	resp, err := svc.CreatePaymentIntent(context.Background(), 1, models.PurchaseCreditsRequest{
		Amount:   models.PackageBuy25Credits,
		Quantity: 1,
		Currency: "usd",
	}, "abc")
	require.NoError(t, err)
	require.Equal(t, "pi_123", resp.PaymentIntentID)

	stored, err := paymentStore.GetByIdempotencyKey("abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
	assert.False(t, stored.CreditsAwarded)

	// A client retry before confirmation returns the same intent without a
	// second provider call.
	again, err := svc.CreatePaymentIntent(context.Background(), 1, models.PurchaseCreditsRequest{
		Amount:   models.PackageBuy25Credits,
		Quantity: 1,
		Currency: "usd",
	}, "abc")
	require.NoError(t, err)
	assert.Equal(t, resp, again)
	gateway.AssertNumberOfCalls(t, "CreatePaymentIntent", 1)

	// Provider confirms. Deliver the event three times.
	gateway.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(succeededEvent("pi_123"), nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.ProcessWebhook([]byte(`{}`), "sig"))
	}

	balance, err = creditService.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, 25, balance)

	assert.Equal(t, models.PaymentStatusSucceeded, stored.Status)
	assert.True(t, stored.CreditsAwarded)

	entries, total, err := creditService.GetTransactions(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionPurchaseCredits, entries[0].Type)
	assert.Equal(t, 25, entries[0].Amount)
	assert.Equal(t, 25, entries[0].BalanceAfter)
}
