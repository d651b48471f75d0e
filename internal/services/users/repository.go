package users

import (
	"context"
	"errors"

	"github.com/killallgit/segments-api/internal/models"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"gorm.io/gorm"
)

// RepositoryImpl implements the Repository interface
type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// CreateUser inserts a new user
func (r *RepositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.AlreadyExists("user", "email or username")
		}
		return apperrors.DatabaseError("create user", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *RepositoryImpl) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email
func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindConflict checks username first, then email
func (r *RepositoryImpl) FindConflict(ctx context.Context, username, email string) (string, error) {
	checks := []struct {
		field string
		value string
	}{
		{"username", username},
		{"email", email},
	}
	for _, c := range checks {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).Where(c.field+" = ?", c.value).Count(&count).Error; err != nil {
			return "", apperrors.DatabaseError("check user", err)
		}
		if count > 0 {
			return c.field, nil
		}
	}
	return "", nil
}

// ListUsers returns all users, newest first
func (r *RepositoryImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperrors.DatabaseError("list users", err)
	}
	return users, nil
}

func (r *RepositoryImpl) first(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", arg)
		}
		return nil, apperrors.DatabaseError("get user", err)
	}
	return &user, nil
}
