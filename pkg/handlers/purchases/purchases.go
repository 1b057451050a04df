package purchases

import (
	"encoding/json"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/mapping"
	"github.com/frmai/coin-ledger/pkg/purchases"
)

// PurchasesHandler holds the dependencies for purchase handlers.
type PurchasesHandler struct {
	Processor *purchases.Processor
}

// NewPurchasesHandler creates a new PurchasesHandler.
func NewPurchasesHandler(processor *purchases.Processor) *PurchasesHandler {
	return &PurchasesHandler{Processor: processor}
}

// CreatePurchase debits a wallet for a catalog package.
func (h *PurchasesHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var newPurchase api.NewPurchase
	if err := json.NewDecoder(r.Body).Decode(&newPurchase); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if newPurchase.UserId == "" || newPurchase.PackageId == "" {
		http.Error(w, "user_id and package_id are required", http.StatusBadRequest)
		return
	}

	idempotencyKey := newPurchase.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = r.Header.Get("Idempotency-Key")
	}

	tx, replayed, err := h.Processor.Purchase(r.Context(), newPurchase.UserId, newPurchase.PackageId, idempotencyKey)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	httperr.JSON(w, status, api.PurchaseResult{
		Transaction: *mapping.ToApiTransaction(tx),
		Replayed:    replayed,
	})
}
