package repository

import (
	"github.com/verifico/verifico-backend/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, id).Error
	return &comment, err
}

func (r *CommentRepository) GetByPostID(postID uint, page, size int) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.Model(&models.Comment{}).
		Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := r.db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&comments).Error
	return comments, total, err
}

// MarkHelpful awards the comment author and persists the helpful flag in one
// transaction. The flag is what prevents a second award, so it must never
// commit separately from the credit.
func (r *CommentRepository) MarkHelpful(comment *models.Comment, award int) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		commentID := comment.ID
		if _, err := applyCreditTx(tx, comment.AuthorID, award, models.TransactionCommentMarkedHelpful, nil, &commentID); err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			Update("helpful", true).Error
	})
	if err != nil {
		return err
	}

	comment.Helpful = true
	return nil
}

func (r *CommentRepository) Delete(comment *models.Comment) error {
	return r.db.Delete(comment).Error
}
