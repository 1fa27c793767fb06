package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return repository.ErrUserExists
	}
	copied := *user
	s.users[user.Email] = &copied
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

type authFixture struct {
	handlers *AuthHandlers
	tokens   *service.TokenService
	gate     *middleware.AuthMiddleware
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.JWTConfig{
		AccessSecret:  strings.Repeat("a", 32),
		RefreshSecret: strings.Repeat("b", 32),
		AccessExpiry:  24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
	}
	tokens, err := service.NewTokenService(&cfg, logger)
	require.NoError(t, err)

	auth := service.NewAuthService(newFakeUserStore(), tokens, nil, logger)

	return &authFixture{
		handlers: NewAuthHandlers(auth, logger, false),
		tokens:   tokens,
		gate:     middleware.NewAuthMiddleware(tokens, logger),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func (f *authFixture) register(t *testing.T, name, email, password string) AuthResponse {
	t.Helper()
	body, err := json.Marshal(RegisterRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)

	rec := postJSON(t, f.handlers.Register, "/api/v1/auth/register", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.register(t, "Ada", "ada@example.com", "correct-horse")
	require.Equal(t, "success", resp.Status)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "ada@example.com", resp.User.Email)

	// The embedded subject matches the registered user.
	claims, err := f.tokens.Verify(resp.Token, service.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.Subject)
	require.Equal(t, "ada@example.com", claims.Email)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing name", `{"email":"a@b.co","password":"longenough"}`},
		{"bad email", `{"name":"Ada","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"name":"Ada","email":"a@b.co","password":"short"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, f.handlers.Register, "/api/v1/auth/register", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Ada", "ada@example.com", "correct-horse")

	body := `{"name":"Imposter","email":"ada@example.com","password":"longenough"}`
	rec := postJSON(t, f.handlers.Register, "/api/v1/auth/register", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "EMAIL_TAKEN")
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "Ada", "ada@example.com", "correct-horse")

	t.Run("success", func(t *testing.T) {
		rec := postJSON(t, f.handlers.Login, "/api/v1/auth/login", `{"email":"ada@example.com","password":"correct-horse"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		require.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("wrong password is generic", func(t *testing.T) {
		rec := postJSON(t, f.handlers.Login, "/api/v1/auth/login", `{"email":"ada@example.com","password":"wrong-password"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		rec := postJSON(t, f.handlers.Login, "/api/v1/auth/login", `{"email":"ghost@example.com","password":"wrong-password"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid credentials")
	})
}

func TestProfile(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "Ada", "ada@example.com", "correct-horse")

	protected := f.gate.RequireAuth(http.HandlerFunc(f.handlers.Profile))

	t.Run("with valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+registered.Token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, registered.User.ID, resp.Data.User.ID)
		require.Equal(t, "ada@example.com", resp.Data.User.Email)
	})

	t.Run("without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "Ada", "ada@example.com", "correct-horse")

	t.Run("valid refresh token", func(t *testing.T) {
		body := `{"refreshToken":"` + registered.RefreshToken + `"}`
		rec := postJSON(t, f.handlers.Refresh, "/api/v1/auth/refresh", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp RefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		require.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("access token rejected", func(t *testing.T) {
		body := `{"refreshToken":"` + registered.Token + `"}`
		rec := postJSON(t, f.handlers.Refresh, "/api/v1/auth/refresh", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)

	rec := postJSON(t, f.handlers.Logout, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "success")
}
