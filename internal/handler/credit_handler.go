package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
)

type CreditHandler struct {
	creditService *service.CreditService
}

func NewCreditHandler(creditService *service.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

func (h *CreditHandler) GetBalance(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	balance, err := h.creditService.GetBalance(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(balance, "Balance successfully fetched"))
}

func (h *CreditHandler) GetTransactions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	page, _ := strconv.Atoi(c.Query("page", "0"))

	transactions, total, err := h.creditService.GetTransactions(userID, page)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(pagedResponse(transactions, page, 15, total), "Transactions fetched"))
}
