package handler

import (
	"encoding/json"
	"net/http"

	"tasktracker/internal/domain"
	"tasktracker/internal/middleware"
	"tasktracker/pkg/errors"
	"tasktracker/pkg/logger"
)

// writeJSON writes a success response body
func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError logs and writes a failure response body. Unexpected errors are
// logged with their cause and surfaced as a generic 500.
func writeError(w http.ResponseWriter, err error, logger *logger.Logger) {
	appErr := errors.AsAppError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithError(appErr).Error("Request failed")
	} else {
		logger.WithError(appErr).Debug("Request rejected")
	}

	errors.WriteError(w, appErr)
}

// userFromContext returns the authenticated user attached by the auth gate
func userFromContext(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(middleware.UserContextKey).(*domain.User)
	return user, ok
}
