package holds

import (
	"encoding/json"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/holds"
	"github.com/frmai/coin-ledger/pkg/mapping"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// HoldsHandler holds the dependencies for hold handlers.
type HoldsHandler struct {
	Manager *holds.Manager
}

// NewHoldsHandler creates a new HoldsHandler.
func NewHoldsHandler(manager *holds.Manager) *HoldsHandler {
	return &HoldsHandler{Manager: manager}
}

// PlaceHold earmarks part of a wallet's available balance.
func (h *HoldsHandler) PlaceHold(w http.ResponseWriter, r *http.Request) {
	var newHold api.NewHold
	if err := json.NewDecoder(r.Body).Decode(&newHold); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if newHold.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	tx, err := h.Manager.PlaceHold(r.Context(), newHold.UserId, newHold.Amount, newHold.Reason)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, mapping.ToApiTransaction(tx))
}

// ReleaseHold returns held funds to the available balance. Releasing an
// already settled hold responds 200 with no body change, not an error.
func (h *HoldsHandler) ReleaseHold(w http.ResponseWriter, r *http.Request, holdId openapi_types.UUID) {
	tx, err := h.Manager.ReleaseHold(r.Context(), holdId)
	if err != nil {
		httperr.Write(w, err)
		return
	}
	if tx == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httperr.JSON(w, http.StatusOK, mapping.ToApiTransaction(tx))
}

// CaptureHold converts a hold into a final debit, releasing any unused
// remainder in the same atomic step.
func (h *HoldsHandler) CaptureHold(w http.ResponseWriter, r *http.Request, holdId openapi_types.UUID) {
	var req api.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest(w, err)
		return
	}

	result, err := h.Manager.CaptureHold(r.Context(), holdId, req.FinalAmount)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	resp := api.CaptureResult{Captured: *mapping.ToApiTransaction(&result.Captured)}
	if result.Released != nil {
		resp.Released = mapping.ToApiTransaction(result.Released)
	}
	httperr.JSON(w, http.StatusOK, resp)
}
