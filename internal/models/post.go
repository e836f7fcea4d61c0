package models

import "time"

type Post struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	AuthorID            uint       `json:"author_id" gorm:"not null;index"`
	Title               string     `json:"title" gorm:"not null"`
	Tagline             string     `json:"tagline" gorm:"not null"`
	Category            string     `json:"category" gorm:"not null;index"`
	Stage               string     `json:"stage" gorm:"not null"`
	ProblemDescription  string     `json:"problem_description" gorm:"size:2000;not null"`
	SolutionDescription string     `json:"solution_description" gorm:"size:2000;not null"`
	LiveDemoURL         string     `json:"live_demo_url"`
	BoostedAt           *time.Time `json:"boosted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type PostRequest struct {
	Title               string `json:"title" validate:"required,max=120"`
	Tagline             string `json:"tagline" validate:"required,max=200"`
	Category            string `json:"category" validate:"required"`
	Stage               string `json:"stage" validate:"required"`
	ProblemDescription  string `json:"problem_description" validate:"required,max=2000"`
	SolutionDescription string `json:"solution_description" validate:"required,max=2000"`
	LiveDemoURL         string `json:"live_demo_url" validate:"omitempty,url"`
}
