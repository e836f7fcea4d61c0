package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verifico/verifico-backend/internal/apperrors"
	"github.com/verifico/verifico-backend/internal/catalog"
	"github.com/verifico/verifico-backend/internal/models"
)

const commentPageSize = 20

// CommentStore is the comment persistence boundary. MarkHelpful must commit
// the author's credit award and the helpful flag as one unit; the flag is
// what guards against a second award, so a failed flag write must roll the
// credit back as well.
type CommentStore interface {
	Create(comment *models.Comment) error
	GetByID(id uint) (*models.Comment, error)
	GetByPostID(postID uint, page, size int) ([]models.Comment, int64, error)
	MarkHelpful(comment *models.Comment, award int) error
	Delete(comment *models.Comment) error
}

// PostGetter is the slice of the post repository the comment flows need.
type PostGetter interface {
	GetByID(id uint) (*models.Post, error)
}

type CommentService struct {
	commentStore CommentStore
	posts        PostGetter
	logger       *zap.Logger
}

func NewCommentService(commentStore CommentStore, posts PostGetter, logger *zap.Logger) *CommentService {
	return &CommentService{
		commentStore: commentStore,
		posts:        posts,
		logger:       logger,
	}
}

func (s *CommentService) PostComment(authorID, postID uint, req models.CommentRequest) (*models.Comment, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  strings.TrimSpace(req.Content),
	}

	if err := s.commentStore.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetComments(postID uint, page int) ([]models.Comment, int64, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperrors.NotFound("post not found")
		}
		return nil, 0, err
	}

	if page < 0 {
		page = 0
	}
	return s.commentStore.GetByPostID(postID, page, commentPageSize)
}

func (s *CommentService) DeleteComment(userID, commentID uint) error {
	comment, err := s.commentStore.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("comment not found")
		}
		return err
	}

	if comment.AuthorID != userID {
		return apperrors.Auth("you are not authorised to make changes to this comment")
	}

	return s.commentStore.Delete(comment)
}

// MarkHelpful lets the post author reward a comment. The helpful flag guards
// the reward: a comment earns its author credits at most once, and the store
// persists the award and the flag atomically so a failed attempt leaves
// neither behind.
func (s *CommentService) MarkHelpful(userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentStore.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, err
	}

	post, err := s.posts.GetByID(comment.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.Auth("only the post author can mark comments as helpful")
	}
	if comment.AuthorID == userID {
		return nil, apperrors.Validation("you cannot mark your own comment as helpful")
	}
	if comment.Helpful {
		return nil, apperrors.Conflict("comment is already marked as helpful")
	}

	award, err := catalog.ActionAmount(models.TransactionCommentMarkedHelpful)
	if err != nil {
		return nil, err
	}

	if err := s.commentStore.MarkHelpful(comment, award); err != nil {
		s.logger.Error("failed to mark comment helpful",
			zap.Uint("comment_id", comment.ID), zap.Error(err))
		return nil, err
	}

	return comment, nil
}
