package user

import (
	"context"
	"errors"

	"blog_backend/internal/apperr"
	"blog_backend/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenIssuer signs a session token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type UserService struct {
	repo   UserRepositoryInterface
	db     *gorm.DB
	tokens TokenIssuer
}

type UserServiceInterface interface {
	Signup(ctx context.Context, input validation.SignupInput) (string, error)
	Signin(ctx context.Context, input validation.SigninInput) (string, error)
}

func NewUserService(repo UserRepositoryInterface, db *gorm.DB, tokens TokenIssuer) UserServiceInterface {
	return &UserService{
		repo:   repo,
		db:     db,
		tokens: tokens,
	}
}

// Signup creates the account and returns a token bound to it. The existence
// check and the insert are separate statements; the unique index on username
// catches the race between them.
func (s *UserService) Signup(ctx context.Context, input validation.SignupInput) (string, error) {
	db := s.db.WithContext(ctx)

	existing, err := s.repo.GetByUsername(db, input.Username)
	switch {
	case err == nil && existing != nil:
		return "", apperr.Conflict("User already exists")
	case err != nil && !errors.Is(err, ErrUserNotFound):
		return "", apperr.Internal(err)
	}

	// Stored in plaintext, see User.
	user := &User{
		Username: input.Username,
		Password: input.Password,
		Name:     input.Name,
	}

	if err := s.repo.Create(db, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return "", apperr.Conflict("User already exists")
		}
		return "", apperr.Internal(err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue token after signup")
		return "", apperr.Internal(err)
	}

	return token, nil
}

// Signin checks the credentials by direct comparison and returns a new token.
func (s *UserService) Signin(ctx context.Context, input validation.SigninInput) (string, error) {
	user, err := s.repo.GetByUsername(s.db.WithContext(ctx), input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", apperr.Credential()
		}
		return "", apperr.Internal(err)
	}

	if user.Password != input.Password {
		return "", apperr.Credential()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}

	return token, nil
}
