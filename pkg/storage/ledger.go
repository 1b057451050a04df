package storage

import (
	"context"

	"github.com/frmai/coin-ledger/pkg/models"
)

// Operation describes one balance-affecting event to be applied to a wallet.
type Operation struct {
	UserId      string
	Type        models.TransactionType
	Amount      int64
	Description string
	RelatedType string
	RelatedId   string
	Metadata    *models.Metadata

	// IdempotencyKey and ExternalTxnId are mirrored onto the transaction
	// row for indexed replay lookups.
	IdempotencyKey string
	ExternalTxnId  string
}

// Ledger is the single atomic-apply primitive. It is the only path that may
// mutate wallet balances.
type Ledger interface {
	// Apply validates op, computes the post-state under the wallet's
	// optimistic lock and persists the wallet update together with the
	// transaction row as one atomic unit. No partial writes occur.
	Apply(ctx context.Context, op Operation) (*models.Transaction, error)

	// ApplyMany applies several operations with the same all-or-nothing
	// guarantee across wallets. Operations are locked in ascending user id
	// order; operations on the same wallet are folded into one update with
	// chained before/after snapshots.
	ApplyMany(ctx context.Context, ops []Operation) ([]models.Transaction, error)
}
