package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/models"
	"github.com/fintrack/fintrack/internal/repository"
)

type CreditCardHandlers struct {
	repo       *repository.CreditCardRepository
	logger     *logrus.Logger
	production bool
}

func NewCreditCardHandlers(repo *repository.CreditCardRepository, logger *logrus.Logger, production bool) *CreditCardHandlers {
	return &CreditCardHandlers{repo: repo, logger: logger, production: production}
}

func (h *CreditCardHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	cards, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: cards})
}

func (h *CreditCardHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	var card models.CreditCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateCreditCard(&card); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	now := time.Now()
	card.ID = uuid.New().String()
	card.UserID = identity.UserID
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := h.repo.Create(r.Context(), &card); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, DataResponse{Data: card})
}

func (h *CreditCardHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	card, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Credit card not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: card})
}

func (h *CreditCardHandlers) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Credit card not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	var card models.CreditCard
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateCreditCard(&card); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	card.ID = existing.ID
	card.UserID = existing.UserID
	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), &card); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: card})
}

func (h *CreditCardHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Credit card not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Credit card deleted"})
}

func validateCreditCard(card *models.CreditCard) string {
	if card.Name == "" {
		return "Name is required"
	}
	if card.CreditLimit < 0 {
		return "Credit limit cannot be negative"
	}
	if card.DueDay < 0 || card.DueDay > 31 {
		return "Due day must be between 1 and 31"
	}
	return ""
}
