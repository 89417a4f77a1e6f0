package handler

import (
	"net/http"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/internal/history"
	"github.com/kaivancodes/TrustportMobileWallet/internal/middleware"
)

type HistoryHandler struct {
	service *history.Service
	logger  Logger
}

func NewHistoryHandler(service *history.Service, log Logger) *HistoryHandler {
	return &HistoryHandler{service: service, logger: log}
}

// List returns the authenticated user's transaction activity, filtered by the
// optional search, channel and range query parameters.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	filter := history.Filter{
		Query:     query.Get("search"),
		DateRange: history.DateRange(query.Get("range")),
	}
	if c := query.Get("channel"); c != "" {
		channel := domain.Channel(c)
		if !channel.Valid() {
			respondError(w, http.StatusBadRequest, "Invalid channel filter")
			return
		}
		filter.Channel = channel
	}

	switch filter.DateRange {
	case history.RangeAll, history.RangeToday, history.RangeYesterday,
		history.RangeLast7Days, history.RangeLast30Days:
	default:
		respondError(w, http.StatusBadRequest, "Invalid date range filter")
		return
	}

	entries, err := h.service.ListFor(r.Context(), userID, filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		respondError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": entries,
		"total":        len(entries),
	})
}
