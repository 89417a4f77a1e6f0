package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kaivancodes/TrustportMobileWallet/internal/middleware"
	"github.com/kaivancodes/TrustportMobileWallet/internal/transfer"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/validator"
)

type TransferHandler struct {
	service   *transfer.Service
	validator *validator.Validator
	logger    Logger
}

func NewTransferHandler(service *transfer.Service, val *validator.Validator, log Logger) *TransferHandler {
	return &TransferHandler{service: service, validator: val, logger: log}
}

type confirmPINRequest struct {
	PIN string `json:"pin" validate:"required,pin"`
}

type confirmOTPRequest struct {
	Code string `json:"code" validate:"required,otp"`
}

// Send starts a transfer for the authenticated user.
func (h *TransferHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req transfer.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	outcome, err := h.service.SendMoney(r.Context(), userID, req)
	if err != nil {
		h.logger.Error("Transfer initiation failed", map[string]interface{}{
			"error":     err.Error(),
			"sender_id": userID,
		})
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, outcome)
}

// ConfirmPIN completes a PIN-gated transfer.
func (h *TransferHandler) ConfirmPIN(w http.ResponseWriter, r *http.Request) {
	userID, attemptID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req confirmPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	outcome, err := h.service.ConfirmPIN(r.Context(), userID, attemptID, req.PIN)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// ConfirmOTP completes an OTP-gated transfer.
func (h *TransferHandler) ConfirmOTP(w http.ResponseWriter, r *http.Request) {
	userID, attemptID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req confirmOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	outcome, err := h.service.ConfirmOTP(r.Context(), userID, attemptID, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// ResendOTP issues a fresh code for an attempt awaiting OTP.
func (h *TransferHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	userID, attemptID, ok := h.identify(w, r)
	if !ok {
		return
	}

	outcome, err := h.service.ResendOTP(r.Context(), userID, attemptID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// Cancel abandons an in-flight transfer attempt.
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, attemptID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), userID, attemptID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *TransferHandler) identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	attemptID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid attempt ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, attemptID, true
}
