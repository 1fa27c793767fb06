package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

// ErrInvalidCredentials is deliberately generic: the caller cannot tell an
// unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the persisted credential store the auth service runs against.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ProfileCache is a best-effort read-through cache for profile lookups.
// Implementations must never let a cache failure fail the lookup.
type ProfileCache interface {
	Get(ctx context.Context, email string) (*models.User, bool)
	Set(ctx context.Context, user *models.User)
}

type AuthService struct {
	users    UserStore
	tokens   *TokenService
	profiles ProfileCache
	logger   *logrus.Logger
}

// NewAuthService wires the auth flows. profiles may be nil to disable
// profile caching.
func NewAuthService(users UserStore, tokens *TokenService, profiles ProfileCache, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		profiles: profiles,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, *models.TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, nil, repository.ErrUserExists
		}
		s.logger.WithError(err).Error("Failed to create user")
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.tokens.IssuePair(Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).Error("Failed to look up user")
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Profile resolves the identity attached by the auth middleware to the
// stored user record, via the cache when one is configured.
func (s *AuthService) Profile(ctx context.Context, identity Identity) (*models.User, error) {
	if s.profiles != nil {
		if user, ok := s.profiles.Get(ctx, identity.Email); ok {
			return user, nil
		}
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, repository.ErrNotFound
	}

	if s.profiles != nil {
		s.profiles.Set(ctx, user)
	}

	return user, nil
}

// Refresh exchanges a valid refresh token for a new token pair. Expired or
// wrong-kind tokens fail with ErrTokenInvalid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	return s.tokens.IssuePair(claims.Identity())
}
