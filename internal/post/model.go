package post

import (
	"time"

	"blog_backend/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	Title     string     `gorm:"not null"`
	Content   string     `gorm:"type:text;not null"`
	AuthorID  string     `gorm:"type:varchar(36);index:idx_post_author;not null"`
	Author    *user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Author is the denormalized slice of a user attached to post reads.
type Author struct {
	Name *string `json:"name"`
}

// PostView is the shape returned by list and get.
type PostView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  Author `json:"author"`
}

// postRow is what the join query scans into before it is shaped as a PostView.
type postRow struct {
	ID         string
	Title      string
	Content    string
	AuthorName *string
}

func (r postRow) view() *PostView {
	return &PostView{
		ID:      r.ID,
		Title:   r.Title,
		Content: r.Content,
		Author:  Author{Name: r.AuthorName},
	}
}
