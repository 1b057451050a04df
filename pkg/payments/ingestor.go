package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
)

// Confirmation is a settlement notification from the upstream payment
// gateway. The gateway may redeliver the same confirmation any number of
// times.
type Confirmation struct {
	ExternalTxnId string `json:"external_txn_id"`
	UserId        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Gateway       string `json:"gateway,omitempty"`
}

// Ingestor credits wallets from gateway settlement confirmations,
// deduplicated by external transaction id.
type Ingestor struct {
	Store storage.ApiStore
}

// NewIngestor creates a new Ingestor.
func NewIngestor(store storage.ApiStore) *Ingestor {
	return &Ingestor{Store: store}
}

// Ingest applies a deposit for the confirmation. A redelivered confirmation
// is a no-op returning the existing deposit; the second return value
// reports the replay. Wallets are created on first deposit, matching user
// registration flows where the gateway callback can arrive first.
func (i *Ingestor) Ingest(ctx context.Context, c Confirmation) (*models.Transaction, bool, error) {
	if c.ExternalTxnId == "" {
		return nil, false, fmt.Errorf("confirmation is missing an external transaction id")
	}
	if c.Amount <= 0 {
		return nil, false, fmt.Errorf("%w: deposit amount must be positive", storage.ErrInvalidAmount)
	}

	existing, err := i.Store.FindDepositByExternalId(ctx, c.ExternalTxnId)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	if _, err := i.Store.GetWallet(ctx, c.UserId); err != nil {
		if !errors.Is(err, storage.ErrWalletNotFound) {
			return nil, false, err
		}
		if _, err := i.Store.CreateWallet(ctx, c.UserId); err != nil && !errors.Is(err, storage.ErrWalletExists) {
			return nil, false, err
		}
	}

	tx, err := i.Store.Apply(ctx, storage.Operation{
		UserId:      c.UserId,
		Type:        models.TypeDeposit,
		Amount:      c.Amount,
		Description: fmt.Sprintf("Deposit via %s", gatewayName(c.Gateway)),
		RelatedType: "payment",
		RelatedId:   c.ExternalTxnId,
		Metadata: &models.Metadata{Deposit: &models.DepositMetadata{
			ExternalTxnId: c.ExternalTxnId,
			Gateway:       c.Gateway,
		}},
		ExternalTxnId: c.ExternalTxnId,
	})
	if err != nil {
		return nil, false, err
	}
	return tx, false, nil
}

func gatewayName(gateway string) string {
	if gateway == "" {
		return "payment gateway"
	}
	return gateway
}
