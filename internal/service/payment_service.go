package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/catalog"
	"github.com/verifico/verifico-backend/internal/models"
)

// PaymentStore is the durable side of payment bookkeeping. It is the
// authority for idempotency: Create returns gorm.ErrDuplicatedKey when a
// concurrent request already inserted the same idempotency key.
// SettleSucceeded must commit the credit award and the status flip as one
// unit; a partial settle (credited but still PENDING) would let a
// redelivered event award twice.
type PaymentStore interface {
	Create(payment *models.Payment) error
	GetByIdempotencyKey(key string) (*models.Payment, error)
	GetByProviderIntentID(intentID string) (*models.Payment, error)
	SettleSucceeded(payment *models.Payment, credits int) error
	Update(payment *models.Payment) error
	GetUserPayments(userID uint) ([]models.Payment, error)
}

// IntentCache accelerates repeated intent lookups. It is best effort only;
// every miss or failure falls through to the durable store or the provider.
type IntentCache interface {
	GetIntent(ctx context.Context, idempotencyKey string) (clientSecret, intentID string, ok bool, err error)
	PutIntent(ctx context.Context, idempotencyKey, clientSecret, intentID string) error
}

type StripeGateway interface {
	CreatePaymentIntent(amountInCents int64, currency, idempotencyKey string, metadata map[string]string) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(id string) (*stripe.PaymentIntent, error)
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

type ReceiptSender interface {
	SendCreditPurchaseReceipt(email, username string, credits int, priceInCents int64) error
}

type PaymentService struct {
	paymentStore  PaymentStore
	userRepo      UserGetter
	cache         IntentCache
	stripeGateway StripeGateway
	receiptSender ReceiptSender
	logger        *zap.Logger
}

type UserGetter interface {
	GetByID(id uint) (*models.User, error)
}

func NewPaymentService(
	paymentStore PaymentStore,
	userRepo UserGetter,
	cache IntentCache,
	stripeGateway StripeGateway,
	receiptSender ReceiptSender,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentStore:  paymentStore,
		userRepo:      userRepo,
		cache:         cache,
		stripeGateway: stripeGateway,
		receiptSender: receiptSender,
		logger:        logger,
	}
}

// CreatePaymentIntent resolves or creates the provider-side intent for one
// purchase attempt. Resolution runs in three tiers: the durable payment row,
// the cache, and finally a fresh create against Stripe with the idempotency
// key forwarded. Repeated calls with the same key converge on one intent.
//
// The pre-checks are an optimization, not the correctness mechanism: two
// near-simultaneous first-time requests can both miss them, and the unique
// index on idempotency_key plus Stripe's own key dedup settle the race.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID uint, req models.PurchaseCreditsRequest, idempotencyKey string) (*models.PaymentIntentResponse, error) {
	if idempotencyKey == "" {
		return nil, apperrors.Validation("Idempotency-Key header is required")
	}
	if req.Quantity != 1 {
		return nil, apperrors.Validation("quantity must be 1")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}

	// Tier 1: a durable row already holds the provider intent id.
	existing, err := s.paymentStore.GetByIdempotencyKey(idempotencyKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Transient("failed to look up payment", err)
	}
	if err == nil && existing.ProviderIntentID != "" {
		return s.resolveExistingIntent(ctx, idempotencyKey, existing.ProviderIntentID)
	}

	// Tier 2: no durable row yet, but a concurrent or earlier attempt may
	// have cached the pair.
	if secret, intentID, ok := s.cacheGet(ctx, idempotencyKey); ok {
		return &models.PaymentIntentResponse{ClientSecret: secret, PaymentIntentID: intentID}, nil
	}

	// Tier 3: create a new intent with the idempotency key forwarded to
	// Stripe, so provider-side retries of the same key dedup as well.
	amountInCents, err := catalog.PriceInCents(req.Amount)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}

	intent, err := s.stripeGateway.CreatePaymentIntent(amountInCents, req.Currency, idempotencyKey, map[string]string{
		"user_id":       fmt.Sprintf("%d", user.ID),
		"purchase_type": string(req.Amount),
	})
	if err != nil {
		return nil, apperrors.Transient("failed to create payment intent", err)
	}

	payment := &models.Payment{
		IdempotencyKey:   idempotencyKey,
		ProviderIntentID: intent.ID,
		PurchasedPackage: req.Amount,
		AmountInCents:    amountInCents,
		UserID:           user.ID,
		Status:           models.PaymentStatusPending,
	}

	if err := s.paymentStore.Create(payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race on the unique index. Stripe deduped the create on
			// the forwarded key, so the winner's row points at this same
			// intent; serve the pair we already hold.
			s.logger.Info("concurrent payment insert resolved by unique constraint",
				zap.String("intent_id", intent.ID))
		} else {
			return nil, apperrors.Transient("failed to persist payment", err)
		}
	}

	s.cachePut(ctx, idempotencyKey, intent.ClientSecret, intent.ID)

	s.logger.Info("payment intent created",
		zap.Uint("user_id", user.ID),
		zap.String("intent_id", intent.ID),
		zap.String("package", string(req.Amount)),
		zap.Int64("amount_in_cents", amountInCents))

	return &models.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func (s *PaymentService) resolveExistingIntent(ctx context.Context, idempotencyKey, intentID string) (*models.PaymentIntentResponse, error) {
	if secret, cachedID, ok := s.cacheGet(ctx, idempotencyKey); ok {
		return &models.PaymentIntentResponse{ClientSecret: secret, PaymentIntentID: cachedID}, nil
	}

	// Cache went cold; the provider still has the intent.
	intent, err := s.stripeGateway.RetrievePaymentIntent(intentID)
	if err != nil {
		return nil, apperrors.Transient("failed to retrieve payment intent", err)
	}

	s.cachePut(ctx, idempotencyKey, intent.ClientSecret, intent.ID)

	return &models.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// ProcessWebhook verifies and applies one provider event. A bad signature
// is a SecurityError: the handler acknowledges it so the provider stops
// redelivering a payload that can never verify. Everything else that fails
// returns a TransientError so the provider redelivers.
func (s *PaymentService) ProcessWebhook(payload []byte, signatureHeader string) error {
	event, err := s.stripeGateway.ConstructEvent(payload, signatureHeader)
	if err != nil {
		return apperrors.Security("invalid webhook signature", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		intent, ok := s.deserializeIntent(event)
		if !ok {
			return nil
		}
		s.logger.Info("payment succeeded event received", zap.String("intent_id", intent.ID))
		return s.handleSuccessfulPayment(intent.ID)

	case "payment_intent.payment_failed":
		intent, ok := s.deserializeIntent(event)
		if !ok {
			return nil
		}
		s.logger.Warn("payment failed event received", zap.String("intent_id", intent.ID))
		return s.handleFailedPayment(intent.ID)

	default:
		// Unrecognized event kinds are acknowledged no-ops.
		s.logger.Debug("unhandled event type", zap.String("type", event.Type))
		return nil
	}
}

// deserializeIntent unpacks the event payload. A recognized event that does
// not deserialize (API version drift) is acknowledged without retry.
func (s *PaymentService) deserializeIntent(event stripe.Event) (*stripe.PaymentIntent, bool) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.logger.Warn("unable to deserialize event, acknowledging without retry",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err))
		return nil, false
	}
	return &intent, true
}

func (s *PaymentService) handleSuccessfulPayment(intentID string) error {
	payment, err := s.paymentStore.GetByProviderIntentID(intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The event may have arrived before intent creation committed;
			// redelivery will find the row once it exists.
			return apperrors.Transient("payment not found for intent "+intentID, err)
		}
		return apperrors.Transient("failed to look up payment", err)
	}

	// Terminal states absorb duplicate delivery.
	if payment.Status == models.PaymentStatusSucceeded || payment.CreditsAwarded {
		s.logger.Info("credits already awarded, skipping",
			zap.Uint("payment_id", payment.ID))
		return nil
	}

	credits, err := catalog.Credits(payment.PurchasedPackage)
	if err != nil {
		return apperrors.Transient("unknown package on payment", err)
	}

	// Award and status flip commit as one transaction; if it fails, nothing
	// was credited and redelivery retries the whole settlement.
	if err := s.paymentStore.SettleSucceeded(payment, credits); err != nil {
		return apperrors.Transient("failed to settle payment", err)
	}

	s.logger.Info("payment settled",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("user_id", payment.UserID),
		zap.Int("credits", credits))

	// Receipt is best effort and strictly after the financial state
	// committed; a failure here never rolls anything back.
	s.sendReceipt(payment, credits)

	return nil
}

func (s *PaymentService) sendReceipt(payment *models.Payment, credits int) {
	user, err := s.userRepo.GetByID(payment.UserID)
	if err != nil {
		s.logger.Warn("could not load user for receipt email",
			zap.Uint("user_id", payment.UserID),
			zap.Error(err))
		return
	}

	email, username := user.Email, user.Username
	amount := payment.AmountInCents
	go func() {
		if err := s.receiptSender.SendCreditPurchaseReceipt(email, username, credits, amount); err != nil {
			s.logger.Warn("receipt email failed", zap.String("email", email), zap.Error(err))
		}
	}()
}

func (s *PaymentService) handleFailedPayment(intentID string) error {
	payment, err := s.paymentStore.GetByProviderIntentID(intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("payment not found for failed intent, ignoring",
				zap.String("intent_id", intentID))
			return nil
		}
		return apperrors.Transient("failed to look up payment", err)
	}

	// Only PENDING transitions to FAILED; SUCCEEDED and FAILED are terminal.
	if payment.Status != models.PaymentStatusPending {
		return nil
	}

	payment.Status = models.PaymentStatusFailed
	if err := s.paymentStore.Update(payment); err != nil {
		return apperrors.Transient("failed to mark payment failed", err)
	}

	s.logger.Warn("payment marked as failed", zap.Uint("payment_id", payment.ID))
	return nil
}

func (s *PaymentService) GetPurchaseHistory(userID uint) ([]models.Payment, error) {
	return s.paymentStore.GetUserPayments(userID)
}

func (s *PaymentService) GetPackages() []models.PackageListing {
	return catalog.Listings()
}

func (s *PaymentService) cacheGet(ctx context.Context, idempotencyKey string) (string, string, bool) {
	secret, intentID, ok, err := s.cache.GetIntent(ctx, idempotencyKey)
	if err != nil {
		s.logger.Warn("idempotency cache read failed", zap.Error(err))
		return "", "", false
	}
	return secret, intentID, ok
}

func (s *PaymentService) cachePut(ctx context.Context, idempotencyKey, clientSecret, intentID string) {
	if err := s.cache.PutIntent(ctx, idempotencyKey, clientSecret, intentID); err != nil {
		s.logger.Warn("idempotency cache write failed", zap.Error(err))
	}
}
