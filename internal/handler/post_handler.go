package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/service"
	"github.com/verifico/verifico-backend/pkg/utils"
)

type PostHandler struct {
	postService *service.PostService
	validator   *utils.Validator
}

func NewPostHandler(postService *service.PostService, validator *utils.Validator) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   validator,
	}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	post, err := h.postService.CreatePost(userID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(post, "Post created"))
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	post, err := h.postService.GetPost(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(post, "Post fetched"))
}

func (h *PostHandler) GetPosts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "0"))
	category := c.Query("category")

	posts, total, err := h.postService.GetPosts(page, category)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(pagedResponse(posts, page, 20, total), "Posts fetched"))
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	post, err := h.postService.UpdatePost(userID, uint(id), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(post, "Post updated"))
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	if err := h.postService.DeletePost(userID, uint(id)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Post deleted"))
}

func (h *PostHandler) BoostPost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Authenticated user not found!"))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid post ID"))
	}

	post, err := h.postService.BoostPost(userID, uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse(post, "Post boosted"))
}
