package models

import "time"

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"size:1000;not null"`
	Helpful   bool      `json:"helpful" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}
