package payments

import (
	"encoding/json"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/mapping"
	"github.com/frmai/coin-ledger/pkg/payments"
)

// PaymentsHandler holds the dependencies for the gateway webhook.
type PaymentsHandler struct {
	Ingestor *payments.Ingestor
}

// NewPaymentsHandler creates a new PaymentsHandler.
func NewPaymentsHandler(ingestor *payments.Ingestor) *PaymentsHandler {
	return &PaymentsHandler{Ingestor: ingestor}
}

// ConfirmPayment credits a wallet from a gateway settlement confirmation.
// Redelivered confirmations return the original deposit with a 200.
func (h *PaymentsHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var confirmation api.PaymentConfirmation
	if err := json.NewDecoder(r.Body).Decode(&confirmation); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if confirmation.ExternalTxnId == "" || confirmation.UserId == "" {
		http.Error(w, "external_txn_id and user_id are required", http.StatusBadRequest)
		return
	}

	tx, replayed, err := h.Ingestor.Ingest(r.Context(), payments.Confirmation{
		ExternalTxnId: confirmation.ExternalTxnId,
		UserId:        confirmation.UserId,
		Amount:        confirmation.Amount,
		Gateway:       confirmation.Gateway,
	})
	if err != nil {
		httperr.Write(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	httperr.JSON(w, status, api.DepositResult{
		Transaction: *mapping.ToApiTransaction(tx),
		Replayed:    replayed,
	})
}
