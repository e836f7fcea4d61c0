package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
	"github.com/verifico/verifico-backend/pkg/utils"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	validator      *utils.Validator
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, validator *utils.Validator, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
		logger:         logger,
	}
}

func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	var req models.PurchaseCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	idempotencyKey := c.Get("Idempotency-Key")

	resp, err := h.paymentService.CreatePaymentIntent(c.Context(), userID, req, idempotencyKey)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "Payment intent successfully created"))
}

// HandleStripeWebhook acknowledges permanently-invalid payloads with 200 so
// the provider stops redelivering them, and returns 500 for transient
// failures to request redelivery.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	if err := h.paymentService.ProcessWebhook(payload, signatureHeader); err != nil {
		if apperrors.IsSecurity(err) {
			h.logger.Error("webhook security violation", zap.Error(err))
			return c.SendStatus(fiber.StatusOK)
		}

		h.logger.Error("webhook processing failed, provider will retry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("webhook processing failed"))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) GetCreditPackages(c *fiber.Ctx) error {
	return c.JSON(models.SuccessResponse(h.paymentService.GetPackages(), "Packages fetched"))
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	payments, err := h.paymentService.GetPurchaseHistory(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(payments, "Purchase history fetched"))
}
