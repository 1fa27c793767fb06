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

type TransactionHandlers struct {
	repo       *repository.TransactionRepository
	logger     *logrus.Logger
	production bool
}

func NewTransactionHandlers(repo *repository.TransactionRepository, logger *logrus.Logger, production bool) *TransactionHandlers {
	return &TransactionHandlers{repo: repo, logger: logger, production: production}
}

func (h *TransactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	transactions, err := h.repo.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: transactions})
}

func (h *TransactionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateTransaction(&txn); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	now := time.Now()
	txn.ID = uuid.New().String()
	txn.UserID = identity.UserID
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if txn.Date.IsZero() {
		txn.Date = now
	}

	if err := h.repo.Create(r.Context(), &txn); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, DataResponse{Data: txn})
}

func (h *TransactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	txn, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Transaction not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: txn})
}

func (h *TransactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Transaction not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if msg := validateTransaction(&txn); msg != "" {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	txn.ID = existing.ID
	txn.UserID = existing.UserID
	txn.CreatedAt = existing.CreatedAt
	txn.UpdatedAt = time.Now()
	if txn.Date.IsZero() {
		txn.Date = existing.Date
	}

	if err := h.repo.Update(r.Context(), &txn); err != nil {
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DataResponse{Data: txn})
}

func (h *TransactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}

	if err := h.repo.Delete(r.Context(), identity.UserID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Transaction not found")
			return
		}
		respondServerError(w, h.logger, h.production, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Transaction deleted"})
}

func validateTransaction(txn *models.Transaction) string {
	if txn.Type != models.TransactionIncome && txn.Type != models.TransactionExpense {
		return "Transaction type must be income or expense"
	}
	if txn.Amount <= 0 {
		return "Amount must be greater than zero"
	}
	return ""
}
