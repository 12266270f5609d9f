package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondValidationErrors(w http.ResponseWriter, errs []ValidationError) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "Validation failed",
		Errors: errs,
	})
}

// respondServiceError maps the domain error kinds to transport status codes.
// Conflict is the only retryable failure and is signalled as such.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidOrder):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrInUse):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrConflict):
		w.Header().Set("Retry-After", "1")
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}
