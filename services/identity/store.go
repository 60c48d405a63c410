package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/smart-campus-api/model"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// UserStore persists campus users.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// GORMUserStore is the PostgreSQL UserStore.
type GORMUserStore struct {
	db *gorm.DB
}

// NewGORMUserStore creates a user store on db.
func NewGORMUserStore(db *gorm.DB) *GORMUserStore {
	return &GORMUserStore{db: db}
}

func (s *GORMUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GORMUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts user. A unique-index violation on email is reported as
// ErrEmailTaken; the database must be opened with TranslateError.
func (s *GORMUserStore) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
