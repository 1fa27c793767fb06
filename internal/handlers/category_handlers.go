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

type CategoryHandlers struct {
	repo       *repository.CategoryRepository
	logger     *logrus.Logger
	production bool
}

func NewCategoryHandlers(repo *repository.CategoryRepository, logger *logrus.Logger, production bool) *CategoryHandlers {
	return &CategoryHandlers{repo: repo, logger: logger, production: production}
}

func (h *CategoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	categories, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: categories})
}

func (h *CategoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateCategory(&category); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	now := time.Now()
	category.ID = uuid.New().String()
	category.UserID = identity.UserID
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := h.repo.Create(r.Context(), &category); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, DataResponse{Data: category})
}

func (h *CategoryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	category, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: category})
}

func (h *CategoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateCategory(&category); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	category.ID = existing.ID
	category.UserID = existing.UserID
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), &category); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: category})
}

func (h *CategoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Category deleted"})
}

func validateCategory(category *models.Category) string {
	if category.Name == "" {
		return "Name is required"
	}
	if category.Type != models.TransactionIncome && category.Type != models.TransactionExpense {
		return "Category type must be income or expense"
	}
	return ""
}
