package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/paycore/internal/adapter/http/dto"
	"github.com/iho/paycore/internal/domain"
)

// IdempotencyKeyHeader carries the caller's idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

// respondError maps err onto a status and a stable error code.
func respondError(w http.ResponseWriter, err error) {
	writeError(w, mapDomainError(err), errorCode(err), err.Error())
}

// decodeJSON rejects unknown fields so typos in amounts do not go unnoticed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransferNotFound),
		errors.Is(err, domain.ErrSettlementNotFound),
		errors.Is(err, domain.ErrRateNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	case domain.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrAccountNotFound, "account_not_found"},
	{domain.ErrTransferNotFound, "transfer_not_found"},
	{domain.ErrSettlementNotFound, "settlement_not_found"},
	{domain.ErrRateNotFound, "rate_not_found"},
	{domain.ErrInsufficientFunds, "insufficient_funds"},
	{domain.ErrAccountInactive, "account_inactive"},
	{domain.ErrCurrencyMismatch, "currency_mismatch"},
	{domain.ErrDuplicateIdempotencyKey, "duplicate_idempotency_key"},
	{domain.ErrSameAccount, "same_account"},
	{domain.ErrSameCurrency, "same_currency"},
	{domain.ErrInvalidAmount, "invalid_amount"},
	{domain.ErrAmountTooLarge, "invalid_amount"},
	{domain.ErrInvalidRate, "invalid_rate"},
	{domain.ErrInvalidCurrency, "invalid_currency"},
	{domain.ErrInvalidAccountName, "invalid_account_name"},
	{domain.ErrInvalidAccountStatus, "invalid_account_status"},
	{domain.ErrInvalidSettlementStatus, "invalid_settlement_status"},
	{domain.ErrMetadataTooLarge, "metadata_too_large"},
}

func errorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal_error"
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
