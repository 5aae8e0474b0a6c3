package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"habitforge/internal/service"
	"habitforge/internal/validation"
)

// respondWithError writes a JSON error response and logs the underlying cause
func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}

	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondJSON writes a JSON response body with the given status
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondServiceError maps the engine's error taxonomy onto HTTP statuses:
// not-found 404, invalid transitions 409, malformed input 400, exhausted
// write conflicts 409, anything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrModuleNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrProgressNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrModuleNotPublished),
		errors.Is(err, service.ErrNotInModule),
		errors.Is(err, service.ErrSessionCompleted):
		respondWithError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrRevisionConflict):
		respondWithError(w, http.StatusConflict, err.Error(), err)
	case validation.IsValidationError(err):
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
