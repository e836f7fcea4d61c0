package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
)

// respondError maps the service error taxonomy onto HTTP status codes.
// Unclassified errors become a 500 without leaking internals.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *apperrors.ValidationError
		authErr       *apperrors.AuthError
		conflictErr   *apperrors.ConflictError
		notFoundErr   *apperrors.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(validationErr.Reason))
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(authErr.Reason))
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse(conflictErr.Reason))
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse(notFoundErr.Reason))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("internal server error"))
	}
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}

func pagedResponse(items interface{}, page, size int, total int64) models.PagedResponse {
	return models.PagedResponse{
		Items:   items,
		Page:    page,
		Size:    size,
		Total:   total,
		HasMore: int64((page+1)*size) < total,
	}
}
