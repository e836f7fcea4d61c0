package service

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/models"
	"github.com/verifico/verifico-backend/internal/repository"
)

const postPageSize = 20

type PostService struct {
	postRepo      *repository.PostRepository
	creditService *CreditService
	logger        *zap.Logger
}

func NewPostService(postRepo *repository.PostRepository, creditService *CreditService, logger *zap.Logger) *PostService {
	return &PostService{
		postRepo:      postRepo,
		creditService: creditService,
		logger:        logger,
	}
}

// CreatePost publishes a post and spends the fixed posting cost. If the
// author cannot cover the cost, the post is removed again and the
// ConflictError from the ledger is returned unchanged.
func (s *PostService) CreatePost(authorID uint, req models.PostRequest) (*models.Post, error) {
	post := &models.Post{
		AuthorID:            authorID,
		Title:               strings.TrimSpace(req.Title),
		Tagline:             strings.TrimSpace(req.Tagline),
		Category:            req.Category,
		Stage:               req.Stage,
		ProblemDescription:  strings.TrimSpace(req.ProblemDescription),
		SolutionDescription: strings.TrimSpace(req.SolutionDescription),
		LiveDemoURL:         req.LiveDemoURL,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	postID := post.ID
	if _, err := s.creditService.SpendCredits(authorID, models.TransactionCreatePost, &postID, nil); err != nil {
		if delErr := s.postRepo.Delete(post); delErr != nil {
			s.logger.Error("failed to remove post after rejected spend",
				zap.Uint("post_id", post.ID), zap.Error(delErr))
		}
		return nil, err
	}

	return post, nil
}

func (s *PostService) GetPost(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPosts(page int, category string) ([]models.Post, int64, error) {
	if page < 0 {
		page = 0
	}
	return s.postRepo.GetAll(page, postPageSize, category)
}

func (s *PostService) UpdatePost(userID, postID uint, req models.PostRequest) (*models.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.Auth("you are not authorised to make changes to this post")
	}

	if req.Title != "" {
		post.Title = strings.TrimSpace(req.Title)
	}
	if req.Tagline != "" {
		post.Tagline = strings.TrimSpace(req.Tagline)
	}
	if req.Category != "" {
		post.Category = req.Category
	}
	if req.Stage != "" {
		post.Stage = req.Stage
	}
	if req.ProblemDescription != "" {
		post.ProblemDescription = strings.TrimSpace(req.ProblemDescription)
	}
	if req.SolutionDescription != "" {
		post.SolutionDescription = strings.TrimSpace(req.SolutionDescription)
	}
	if req.LiveDemoURL != "" {
		post.LiveDemoURL = req.LiveDemoURL
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(userID, postID uint) error {
	post, err := s.GetPost(postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return apperrors.Auth("you are not authorised to make changes to this post")
	}
	return s.postRepo.Delete(post)
}

// BoostPost spends the boost cost and stamps the post.
func (s *PostService) BoostPost(userID, postID uint) (*models.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.Auth("you can only boost your own posts")
	}

	if _, err := s.creditService.SpendCredits(userID, models.TransactionBoostPost, &postID, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	post.BoostedAt = &now
	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}
