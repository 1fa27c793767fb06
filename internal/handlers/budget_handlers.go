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

type BudgetHandlers struct {
	repo       *repository.BudgetRepository
	logger     *logrus.Logger
	production bool
}

func NewBudgetHandlers(repo *repository.BudgetRepository, logger *logrus.Logger, production bool) *BudgetHandlers {
	return &BudgetHandlers{repo: repo, logger: logger, production: production}
}

func (h *BudgetHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	budgets, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: budgets})
}

func (h *BudgetHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	var budget models.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateBudget(&budget); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	now := time.Now()
	budget.ID = uuid.New().String()
	budget.UserID = identity.UserID
	budget.CreatedAt = now
	budget.UpdatedAt = now

	if err := h.repo.Create(r.Context(), &budget); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, DataResponse{Data: budget})
}

func (h *BudgetHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	budget, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Budget not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: budget})
}

func (h *BudgetHandlers) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Budget not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	var budget models.Budget
	if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateBudget(&budget); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	budget.ID = existing.ID
	budget.UserID = existing.UserID
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), &budget); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: budget})
}

func (h *BudgetHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Budget not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Budget deleted"})
}

func validateBudget(budget *models.Budget) string {
	if budget.CategoryID == "" {
		return "Category is required"
	}
	if budget.Amount <= 0 {
		return "Amount must be greater than zero"
	}
	if budget.Month == "" {
		return "Month is required"
	}
	return ""
}
