package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/models"
)

// ErrTokenInvalid covers every verification failure: bad signature, wrong
// kind, expired, malformed. Callers must not expose which one it was.
var ErrTokenInvalid = errors.New("invalid token")

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Identity is the subject a verified token resolves to.
type Identity struct {
	UserID string
	Email  string
}

type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.Subject, Email: c.Email}
}

// TokenService issues and verifies the signed bearer tokens. Access and
// refresh tokens are signed with distinct secrets so one kind can never
// pass verification as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	logger        *logrus.Logger
}

func NewTokenService(cfg *config.JWTConfig, logger *logrus.Logger) (*TokenService, error) {
	if len(cfg.AccessSecret) < 32 || len(cfg.RefreshSecret) < 32 {
		return nil, fmt.Errorf("token secrets must be at least 32 bytes")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}
	if cfg.AccessExpiry >= cfg.RefreshExpiry {
		return nil, fmt.Errorf("access expiry (%s) must be shorter than refresh expiry (%s)", cfg.AccessExpiry, cfg.RefreshExpiry)
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
		logger:        logger,
	}, nil
}

func (s *TokenService) IssueAccessToken(identity Identity) (string, error) {
	return s.issue(identity, TokenKindAccess)
}

func (s *TokenService) IssueRefreshToken(identity Identity) (string, error) {
	return s.issue(identity, TokenKindRefresh)
}

// IssuePair mints a fresh access/refresh token pair for the identity.
func (s *TokenService) IssuePair(identity Identity) (*models.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func (s *TokenService) issue(identity Identity, kind TokenKind) (string, error) {
	now := time.Now()

	secret := s.accessSecret
	expiry := s.accessExpiry
	if kind == TokenKindRefresh {
		secret = s.refreshSecret
		expiry = s.refreshExpiry
	}

	claims := &Claims{
		Email: identity.Email,
		Type:  string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		s.logger.WithError(err).WithField("kind", kind).Error("Failed to sign token")
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Verify checks the token against the secret for the given kind and
// enforces that the embedded type claim matches. A refresh token presented
// as an access token fails both checks.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := s.accessSecret
	if kind == TokenKindRefresh {
		secret = s.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("kind", kind).Debug("Token verification failed")
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Type != string(kind) {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func GenerateSecretKey() (string, error) {
	key := make([]byte, 32) // 256 bits
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}
