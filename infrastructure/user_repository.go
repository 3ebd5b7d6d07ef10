package infrastructure

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"resume-ranker/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: string(hash)}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, &domain.PersistenceError{Op: "create user", Err: err}
	}
	return user, nil
}

func (r *UserRepository) Get(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Resource: "user", ID: strconv.FormatUint(uint64(id), 10)}
		}
		return nil, &domain.PersistenceError{Op: "get user", Err: err}
	}
	return &user, nil
}

// Authenticate returns the user for a valid username/password pair and
// domain.ErrUnauthorized otherwise.
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, &domain.PersistenceError{Op: "find user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, &domain.PersistenceError{Op: "count users", Err: err}
	}
	return count, nil
}
