package post

import (
	"context"
	"errors"
	"time"

	"blog_backend/internal/apperr"
	"blog_backend/internal/events"
	"blog_backend/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const publishTimeout = 2 * time.Second

type PostServiceInterface interface {
	CreatePost(ctx context.Context, authorID string, input validation.CreatePostInput) (string, error)
	UpdatePost(ctx context.Context, editorID string, input validation.UpdatePostInput) (string, error)
	ListPosts(ctx context.Context) ([]*PostView, error)
	GetPost(ctx context.Context, id string) (*PostView, error)
}

type PostService struct {
	repo      PostRepositoryInterface
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewPostService(repo PostRepositoryInterface, db *gorm.DB, publisher events.Publisher) PostServiceInterface {
	return &PostService{
		repo:      repo,
		db:        db,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID string, input validation.CreatePostInput) (string, error) {
	post := &Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: authorID,
	}

	if err := s.repo.Create(s.db.WithContext(ctx), post); err != nil {
		return "", apperr.Internal(err)
	}

	s.publish(ctx, events.PostCreated, post.ID, authorID)
	return post.ID, nil
}

// UpdatePost rewrites a post by id. Any authenticated caller may update any
// post; editorID is only recorded on the event.
func (s *PostService) UpdatePost(ctx context.Context, editorID string, input validation.UpdatePostInput) (string, error) {
	if err := s.repo.Update(s.db.WithContext(ctx), input.ID, input.Title, input.Content); err != nil {
		return "", apperr.Internal(err)
	}

	s.publish(ctx, events.PostUpdated, input.ID, editorID)
	return input.ID, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]*PostView, error) {
	posts, err := s.repo.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return posts, nil
}

// GetPost returns nil without an error when no post has id.
func (s *PostService) GetPost(ctx context.Context, id string) (*PostView, error) {
	post, err := s.repo.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return post, nil
}

// publish is best effort: the write has already succeeded, so a broker
// failure is logged and the request carries on.
func (s *PostService) publish(ctx context.Context, eventType events.Type, postID, authorID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.PostEvent{
		Type:       eventType,
		PostID:     postID,
		AuthorID:   authorID,
		OccurredAt: s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"type":    eventType,
			"post_id": postID,
		}).Warn("Failed to publish post event")
	}
}
