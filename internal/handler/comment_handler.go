package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
	"github.com/verifico/verifico-backend/pkg/utils"
)

type CommentHandler struct {
	commentService *service.CommentService
	validator      *utils.Validator
}

func NewCommentHandler(commentService *service.CommentService, validator *utils.Validator) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		validator:      validator,
	}
}

func (h *CommentHandler) PostComment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	postID, err := strconv.ParseUint(c.Params("postId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	var req models.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	comment, err := h.commentService.PostComment(userID, uint(postID), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(comment, "Comment posted"))
}

func (h *CommentHandler) GetComments(c *fiber.Ctx) error {
	postID, err := strconv.ParseUint(c.Params("postId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	page, _ := strconv.Atoi(c.Query("page", "0"))

	comments, total, err := h.commentService.GetComments(uint(postID), page)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(pagedResponse(comments, page, 20, total), "Comments fetched"))
}

func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid comment ID"))
	}

	if err := h.commentService.DeleteComment(userID, uint(id)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Comment deleted"))
}

func (h *CommentHandler) MarkHelpful(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid comment ID"))
	}

	comment, err := h.commentService.MarkHelpful(userID, uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(comment, "Comment marked as helpful"))
}
