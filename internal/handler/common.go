// Package handler exposes the transfer engine over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidationErrors(w http.ResponseWriter, errors map[string]string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":             "Validation failed",
		"validation_errors": errors,
	})
}

// statusFor maps service errors to HTTP status codes. Unknown errors are
// treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkgerrors.ErrRecipientNotFound),
		errors.Is(err, pkgerrors.ErrAttemptNotFound),
		errors.Is(err, pkgerrors.ErrAccountNotFound),
		errors.Is(err, pkgerrors.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerrors.ErrInvalidAmount),
		errors.Is(err, pkgerrors.ErrInvalidChannel),
		errors.Is(err, pkgerrors.ErrSelfTransferNotAllowed),
		errors.Is(err, pkgerrors.ErrContactRequired):
		return http.StatusBadRequest
	case errors.Is(err, pkgerrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pkgerrors.ErrChallengeExpired),
		errors.Is(err, pkgerrors.ErrChallengeRejected):
		return http.StatusUnauthorized
	case errors.Is(err, pkgerrors.ErrAttemptNotWaiting):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "Internal server error")
		return
	}
	respondError(w, status, err.Error())
}
