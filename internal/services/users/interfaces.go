package users

import (
	"context"

	"github.com/killallgit/segments-api/internal/models"
)

// Repository defines the interface for user data access
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindConflict returns the name of the first unique field already taken, or ""
	FindConflict(ctx context.Context, username, email string) (string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Service defines the interface for user business logic
type Service interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in CreateInput) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// Authenticate returns the user when the password matches the stored hash
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// CreateInput carries the fields needed to register a user
type CreateInput struct {
	Username string
	Email    string
	Password string
}
