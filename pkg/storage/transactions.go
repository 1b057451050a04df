package storage

import (
	"context"
	"time"

	"github.com/frmai/coin-ledger/pkg/models"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransactionQuery narrows a transaction history listing.
type TransactionQuery struct {
	// Limit caps the page size. Zero means the store default.
	Limit int32
	// Cursor is the opaque continuation token from a previous page.
	Cursor string
	// Type, when set, restricts results to one transaction type.
	Type models.TransactionType
}

// TransactionReader defines the read side of the transaction log.
type TransactionReader interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID openapi_types.UUID) (*models.Transaction, error)

	// ListTransactionsByUser returns one page of a user's history, newest
	// first, plus the cursor for the next page ("" when exhausted).
	ListTransactionsByUser(ctx context.Context, userID string, q TransactionQuery) ([]models.Transaction, string, error)

	// ListSettledByUser returns every transaction that mutated the user's
	// balances: completed rows plus reversed rows, whose effect is undone
	// by a compensating row rather than by editing history. Used by
	// reconciliation and stats; follows pagination internally.
	ListSettledByUser(ctx context.Context, userID string) ([]models.Transaction, error)

	// FindCompletedByIdempotencyKey returns the completed transaction
	// carrying the key, or nil when no such row exists.
	FindCompletedByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)

	// FindDepositByExternalId returns the completed deposit credited for
	// the external settlement id, or nil when none exists.
	FindDepositByExternalId(ctx context.Context, externalTxnID string) (*models.Transaction, error)

	// ListByRelatedId returns all rows correlated under one related id,
	// e.g. both legs of a transfer or a hold's lifecycle rows.
	ListByRelatedId(ctx context.Context, relatedType, relatedID string) ([]models.Transaction, error)
}

// TransactionJanitor defines the maintenance operations used by the
// scheduled reconciliation job and the admin reversal path.
type TransactionJanitor interface {
	// ListStalePending retrieves pending rows older than maxAge.
	ListStalePending(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error)

	// MarkTransactionFailed moves a pending row to failed. A row that is
	// no longer pending is left untouched.
	MarkTransactionFailed(ctx context.Context, txID openapi_types.UUID) error

	// MarkTransactionReversed moves a completed row to reversed. Returns
	// ErrNotReversible if the row is not completed.
	MarkTransactionReversed(ctx context.Context, txID openapi_types.UUID) error
}
