package user

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository struct{}

type UserRepositoryInterface interface {
	Create(db *gorm.DB, user *User) error
	GetByUsername(db *gorm.DB, username string) (*User, error)
}

func NewUserRepository() UserRepositoryInterface {
	return &UserRepository{}
}

// Create inserts user and fills in its generated ID.
func (r *UserRepository) Create(db *gorm.DB, user *User) error {
	if err := db.Create(user).Error; err != nil {
		if isDuplicateError(err) {
			logrus.WithField("username", user.Username).Warn("Duplicate username on insert")
			return ErrDuplicateUsername
		}
		logrus.WithError(err).Error("Failed to create user")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created successfully")

	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	if err := db.Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by username")
		return nil, err
	}
	return &user, nil
}

// isDuplicateError recognises unique violations from Postgres and SQLite,
// translated by GORM or not.
func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
