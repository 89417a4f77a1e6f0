package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/kaivancodes/TrustportMobileWallet/internal/directory"
	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/validator"
)

type DirectoryHandler struct {
	service   *directory.Service
	validator *validator.Validator
	logger    Logger
}

func NewDirectoryHandler(service *directory.Service, val *validator.Validator, log Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, validator: val, logger: log}
}

// recipientView is the public shape of an account. Balance and phone number
// are never exposed to other users.
type recipientView struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	WalletID      string    `json:"wallet_id"`
	AccountNumber *string   `json:"account_number,omitempty"`
}

func viewOf(account *domain.Account) recipientView {
	return recipientView{
		ID:            account.ID,
		Username:      account.Username,
		WalletID:      account.WalletID,
		AccountNumber: account.AccountNumber,
	}
}

type resolveRequest struct {
	Recipient string         `json:"recipient" validate:"required"`
	Channel   domain.Channel `json:"channel" validate:"required,channel"`
}

// Resolve maps a recipient token to an account for pre-transfer confirmation.
func (h *DirectoryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := h.validator.ValidateStructured(&req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	account, err := h.service.Resolve(r.Context(), req.Recipient, req.Channel)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(account))
}

// Search returns recipient suggestions for the send-money form.
func (h *DirectoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), 5)
	if err != nil {
		h.logger.Error("Recipient search failed", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	views := make([]recipientView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, viewOf(account))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"recipients": views})
}
