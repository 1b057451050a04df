package transfers

import (
	"encoding/json"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/mapping"
	"github.com/frmai/coin-ledger/pkg/transfer"
)

// TransfersHandler holds the dependencies for transfer handlers.
type TransfersHandler struct {
	Engine *transfer.Engine
}

// NewTransfersHandler creates a new TransfersHandler.
func NewTransfersHandler(engine *transfer.Engine) *TransfersHandler {
	return &TransfersHandler{Engine: engine}
}

// CreateTransfer moves coins between two wallets atomically. The
// idempotency key may come from the body or the Idempotency-Key header;
// the body wins when both are set.
func (h *TransfersHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var newTransfer api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&newTransfer); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if newTransfer.FromUserId == "" || newTransfer.ToUserId == "" {
		http.Error(w, "from_user_id and to_user_id are required", http.StatusBadRequest)
		return
	}

	idempotencyKey := newTransfer.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = r.Header.Get("Idempotency-Key")
	}

	result, err := h.Engine.Transfer(r.Context(),
		newTransfer.FromUserId, newTransfer.ToUserId,
		newTransfer.Amount, newTransfer.Description, idempotencyKey)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	httperr.JSON(w, status, api.TransferResult{
		TransferId: result.TransferId,
		Outgoing:   *mapping.ToApiTransaction(&result.Outgoing),
		Incoming:   *mapping.ToApiTransaction(&result.Incoming),
		Replayed:   result.Replayed,
	})
}
