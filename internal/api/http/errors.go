package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidInterval, http.StatusBadRequest, "invalid_interval"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrReservationNotFound, http.StatusNotFound, "reservation_not_found"},
	{domain.ErrPaymentNotFound, http.StatusNotFound, "payment_not_found"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrSpaceNotFound, http.StatusNotFound, "space_not_found"},
	{domain.ErrInactiveUserCannotBook, http.StatusForbidden, "inactive_user_cannot_book"},
	{domain.ErrSpaceUnavailable, http.StatusConflict, "space_unavailable"},
	{domain.ErrReservationAlreadyClosed, http.StatusConflict, "reservation_already_closed"},
	{domain.ErrPaymentNotPending, http.StatusConflict, "payment_not_pending"},
	{domain.ErrPendingPaymentsBlockDeactivation, http.StatusConflict, "pending_payments_block_deactivation"},
	{domain.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{domain.ErrUserHasHistory, http.StatusConflict, "user_has_history"},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeError maps domain errors to HTTP statuses. Anything unmapped is a 500
// and its details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeErrorStatus(w, m.status, m.code, err.Error())
			return
		}
	}
	logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "requestID", RequestIDFromContext(r.Context()), "error", err)
	writeErrorStatus(w, http.StatusInternalServerError, "internal", "internal server error")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
