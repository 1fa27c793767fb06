package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// DataResponse wraps resource payloads under a data key.
type DataResponse struct {
	Data interface{} `json:"data"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// respondServerError hides internals in production: the caller sees a
// generic message while the detail goes to the log.
func respondServerError(w http.ResponseWriter, logger *logrus.Logger, production bool, err error) {
	logger.WithError(err).Error("Unexpected server error")

	message := "Internal server error"
	if !production {
		message = err.Error()
	}
	respondWithError(w, http.StatusInternalServerError, "SERVER_ERROR", message)
}
