// Package httperr maps storage sentinel errors onto HTTP status codes and
// writes JSON responses. All handlers route their failures through here so
// the taxonomy stays in one place.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/storage"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Write maps err to a status code and writes it as the response.
func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

// BadRequest reports a malformed request body.
func BadRequest(w http.ResponseWriter, err error) {
	http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
}

// StatusFor returns the HTTP status code for a storage error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidAmount),
		errors.Is(err, storage.ErrSelfTransfer):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrAdminUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrWalletNotFound),
		errors.Is(err, storage.ErrTransactionNotFound),
		errors.Is(err, storage.ErrPackageNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrWalletExists),
		errors.Is(err, storage.ErrDuplicateIdempotencyKey),
		errors.Is(err, storage.ErrHoldNotActive),
		errors.Is(err, storage.ErrNotReversible):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInsufficientFunds),
		errors.Is(err, storage.ErrWalletInactive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrRetryExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, storage.ErrCatalogUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
