package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	adminsvc "github.com/frmai/coin-ledger/pkg/admin"
	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/mapping"
	"github.com/frmai/coin-ledger/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const defaultAuditLimit = 50

// AdminHandler holds the dependencies for privileged handlers.
type AdminHandler struct {
	Adjuster *adminsvc.Adjuster
	Audit    storage.AuditStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adjuster *adminsvc.Adjuster, audit storage.AuditStore) *AdminHandler {
	return &AdminHandler{Adjuster: adjuster, Audit: audit}
}

// AddCoins applies a signed manual adjustment to a wallet.
func (h *AdminHandler) AddCoins(w http.ResponseWriter, r *http.Request, userId string) {
	var adjustment api.AdminAdjustment
	if err := json.NewDecoder(r.Body).Decode(&adjustment); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if adjustment.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}

	tx, err := h.Adjuster.Adjust(r.Context(), userId, adjustment.Amount, adjustment.Reason)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, mapping.ToApiTransaction(tx))
}

// ReverseTransaction writes a compensating row for a completed transaction
// and marks the original reversed.
func (h *AdminHandler) ReverseTransaction(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	var req api.ReversalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if req.Reason == "" {
		http.Error(w, "reason is required", http.StatusBadRequest)
		return
	}

	tx, err := h.Adjuster.Reverse(r.Context(), transactionId, req.Reason)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, mapping.ToApiTransaction(tx))
}

// DeactivateWallet soft-deletes a wallet and leaves an audit entry. The
// transaction history stays behind for reconciliation.
func (h *AdminHandler) DeactivateWallet(w http.ResponseWriter, r *http.Request, userId string) {
	if err := h.Adjuster.Deactivate(r.Context(), userId, r.URL.Query().Get("reason")); err != nil {
		httperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAuditEntries returns the audit trail for one wallet, newest first.
func (h *AdminHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request, userId string) {
	limit := int32(defaultAuditLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = int32(parsed)
	}

	entries, err := h.Audit.ListAuditEntries(r.Context(), userId, limit)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	apiEntries := make([]*api.AuditEntry, len(entries))
	for i := range entries {
		apiEntries[i] = mapping.ToApiAuditEntry(&entries[i])
	}
	httperr.JSON(w, http.StatusOK, apiEntries)
}
