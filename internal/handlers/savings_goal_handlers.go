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

type SavingsGoalHandlers struct {
	repo       *repository.SavingsGoalRepository
	logger     *logrus.Logger
	production bool
}

func NewSavingsGoalHandlers(repo *repository.SavingsGoalRepository, logger *logrus.Logger, production bool) *SavingsGoalHandlers {
	return &SavingsGoalHandlers{repo: repo, logger: logger, production: production}
}

func (h *SavingsGoalHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	goals, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: goals})
}

func (h *SavingsGoalHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	var goal models.SavingsGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateSavingsGoal(&goal); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	now := time.Now()
	goal.ID = uuid.New().String()
	goal.UserID = identity.UserID
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := h.repo.Create(r.Context(), &goal); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, DataResponse{Data: goal})
}

func (h *SavingsGoalHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	goal, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Savings goal not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: goal})
}

func (h *SavingsGoalHandlers) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Savings goal not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	var goal models.SavingsGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateSavingsGoal(&goal); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	goal.ID = existing.ID
	goal.UserID = existing.UserID
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), &goal); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: goal})
}

func (h *SavingsGoalHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Savings goal not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Savings goal deleted"})
}

func validateSavingsGoal(goal *models.SavingsGoal) string {
	if goal.Name == "" {
		return "Name is required"
	}
	if goal.TargetAmount <= 0 {
		return "Target amount must be greater than zero"
	}
	if goal.CurrentAmount < 0 {
		return "Current amount cannot be negative"
	}
	return ""
}
