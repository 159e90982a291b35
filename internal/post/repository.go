package post

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository struct{}

type PostRepositoryInterface interface {
	Create(db *gorm.DB, post *Post) error
	Update(db *gorm.DB, id, title, content string) error
	GetByID(db *gorm.DB, id string) (*PostView, error)
	List(db *gorm.DB) ([]*PostView, error)
}

func NewPostRepository() PostRepositoryInterface {
	return &PostRepository{}
}

// Create inserts post and fills in its generated ID.
func (r *PostRepository) Create(db *gorm.DB, post *Post) error {
	if err := db.Omit("Author").Create(post).Error; err != nil {
		logrus.WithError(err).WithField("author_id", post.AuthorID).Error("Failed to create post")
		return err
	}
	return nil
}

// Update rewrites title and content. It does not look at the author.
func (r *PostRepository) Update(db *gorm.DB, id, title, content string) error {
	result := db.Model(&Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":   title,
			"content": content,
		})
	if result.Error != nil {
		logrus.WithError(result.Error).WithField("post_id", id).Error("Failed to update post")
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

func withAuthorName(db *gorm.DB) *gorm.DB {
	return db.Table("posts").
		Select("posts.id, posts.title, posts.content, users.name AS author_name").
		Joins("LEFT JOIN users ON users.id = posts.author_id")
}

// GetByID returns the first post with id, with its author's name.
func (r *PostRepository) GetByID(db *gorm.DB, id string) (*PostView, error) {
	var rows []postRow
	if err := withAuthorName(db).Where("posts.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		logrus.WithError(err).WithField("post_id", id).Error("Failed to get post by ID")
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}

	return rows[0].view(), nil
}

// List returns every post. There is no paging; the result grows with the table.
func (r *PostRepository) List(db *gorm.DB) ([]*PostView, error) {
	var rows []postRow
	if err := withAuthorName(db).Scan(&rows).Error; err != nil {
		logrus.WithError(err).Error("Failed to list posts")
		return nil, err
	}

	posts := make([]*PostView, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.view())
	}

	return posts, nil
}
