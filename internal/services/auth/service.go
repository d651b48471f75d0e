package auth

import (
	"context"
	"errors"

	"github.com/killallgit/segments-api/internal/models"
	"github.com/killallgit/segments-api/internal/services/users"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/killallgit/segments-api/pkg/logger"
)

// LoginResult is returned on successful login
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Service registers users, logs them in and resolves bearer tokens
type Service struct {
	users  users.Service
	tokens *TokenService
	logger *logger.Logger
}

// NewService creates an auth service
func NewService(userService users.Service, tokens *TokenService, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{users: userService, tokens: tokens, logger: log}
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, in users.CreateInput) (*models.User, error) {
	return s.users.CreateUser(ctx, in)
}

// Login checks credentials and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeUnauthorized) {
			s.logger.Info("login rejected", "email", email)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to issue token")
	}
	return &LoginResult{User: user, Token: token}, nil
}

// Verify resolves a bearer token to its user
func (s *Service) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return nil, apperrors.Unauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}

// ParseToken validates a token without touching the store
func (s *Service) ParseToken(token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("authentication token required")
	}
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token expired").WithCause(err)
		}
		return nil, apperrors.Unauthorized("invalid token").WithCause(err)
	}
	return claims, nil
}
