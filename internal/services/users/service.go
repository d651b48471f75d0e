package users

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/killallgit/segments-api/internal/models"
	"github.com/killallgit/segments-api/internal/services/cache"
	apperrors "github.com/killallgit/segments-api/pkg/errors"
	"github.com/killallgit/segments-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repository Repository
	cache      cache.Cache
	cacheTTL   time.Duration
	bcryptCost int
	logger     *logger.Logger
}

// Config holds the tunables of the user service
type Config struct {
	BcryptCost int
	CacheTTL   time.Duration
}

// NewService creates a new user service. A nil cache disables lookup caching.
func NewService(repository Repository, c cache.Cache, cfg Config, log *logger.Logger) Service {
	if c == nil {
		c = cache.NoopCache{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &ServiceImpl{
		repository: repository,
		cache:      c,
		cacheTTL:   cfg.CacheTTL,
		bcryptCost: cost,
		logger:     log,
	}
}

// ListUsers returns every user
func (s *ServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repository.ListUsers(ctx)
}

// CreateUser validates and stores a new user with a hashed password
func (s *ServiceImpl) CreateUser(ctx context.Context, in CreateInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFieldError(missing...)
	}

	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return nil, apperrors.ValidationError("username", "must be between 3 and 50 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.ValidationError("email", "is invalid")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperrors.ValidationError("password", "must be at least 6 characters")
	}

	field, err := s.repository.FindConflict(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if field != "" {
		return nil, apperrors.AlreadyExists("user", field)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUserByID returns a user, serving repeat lookups from the cache
func (s *ServiceImpl) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	key := "user:" + id
	if raw, ok := s.cache.Get(ctx, key); ok {
		var user models.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return &user, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	user, err := s.repository.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache user", "user_id", id, "error", err)
		}
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, matched case-insensitively
func (s *ServiceImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Authenticate checks the credentials and reports any mismatch as unauthorized
func (s *ServiceImpl) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var missing []string
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.MissingFieldError(missing...)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeNotFound) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return user, nil
}
