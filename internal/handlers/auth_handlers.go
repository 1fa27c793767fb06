package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

type AuthHandlers struct {
	auth       *service.AuthService
	logger     *logrus.Logger
	production bool
}

func NewAuthHandlers(auth *service.AuthService, logger *logrus.Logger, production bool) *AuthHandlers {
	return &AuthHandlers{
		auth:       auth,
		logger:     logger,
		production: production,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is the flat login/register shape: tokens at the top level,
// never nested under a data wrapper.
type AuthResponse struct {
	Status       string       `json:"status"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type RefreshResponse struct {
	Status       string `json:"status"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type ProfileResponse struct {
	Data ProfileData `json:"data"`
}

type ProfileData struct {
	User UserResponse `json:"user"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		respondWithError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
		return
	}
	if req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_PASSWORD", "Password is required")
		return
	}

	user, pair, err := h.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse(user, pair))
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_NAME", "Name is required")
		return
	}
	if !emailPattern.MatchString(email) {
		respondWithError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
		return
	}
	if len(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "INVALID_PASSWORD", "Password must be at least 8 characters")
		return
	}

	user, pair, err := h.auth.Register(r.Context(), name, email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			respondWithError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email is already registered")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse(user, pair))
}

func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	user, err := h.auth.Profile(r.Context(), identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProfileResponse{
		Data: ProfileData{User: userResponse(user)},
	})
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Refresh token is required")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, RefreshResponse{
		Status:       "success",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout acknowledges the request. Tokens are stateless, so there is
// nothing to revoke server-side; the client discards its copies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "Logged out",
	})
}

func authResponse(user *models.User, pair *models.TokenPair) AuthResponse {
	return AuthResponse{
		Status:       "success",
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         userResponse(user),
	}
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
