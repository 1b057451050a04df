package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frmai/coin-ledger/pkg/auth"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Adjuster performs privileged manual credits and debits. Every adjustment
// leaves a paired audit entry.
type Adjuster struct {
	Store storage.Storage
}

// NewAdjuster creates a new Adjuster.
func NewAdjuster(store storage.Storage) *Adjuster {
	return &Adjuster{Store: store}
}

// Adjust applies a signed admin adjustment. Negative amounts revoke coins
// but can never drive the balance below the locked balance or zero. The
// caller context must carry the admin capability.
func (a *Adjuster) Adjust(ctx context.Context, userID string, amount int64, reason string) (*models.Transaction, error) {
	adminID, ok := auth.AdminFrom(ctx)
	if !ok {
		return nil, storage.ErrAdminUnauthorized
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: adjustment amount must be non-zero", storage.ErrInvalidAmount)
	}

	tx, err := a.Store.Apply(ctx, storage.Operation{
		UserId:      userID,
		Type:        models.TypeAdminAdjustment,
		Amount:      amount,
		Description: reason,
		Metadata: &models.Metadata{Admin: &models.AdminMetadata{
			AdminId: adminID,
			Reason:  reason,
		}},
	})
	if err != nil {
		return nil, err
	}

	a.audit(ctx, adminID, tx, "adjust", reason)
	return tx, nil
}

// Reverse compensates a completed transaction and marks it reversed. The
// original row is never edited: a refund row undoes a debit, a negative
// adjustment undoes a credit.
func (a *Adjuster) Reverse(ctx context.Context, txID openapi_types.UUID, reason string) (*models.Transaction, error) {
	adminID, ok := auth.AdminFrom(ctx)
	if !ok {
		return nil, storage.ErrAdminUnauthorized
	}

	original, err := a.Store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if original.Status != models.COMPLETED {
		return nil, fmt.Errorf("%w: status %s", storage.ErrNotReversible, original.Status)
	}
	delta := models.BalanceDelta(original.Type, original.Amount)
	if delta == 0 {
		return nil, fmt.Errorf("%w: %s rows carry no balance change", storage.ErrNotReversible, original.Type)
	}

	op := storage.Operation{
		UserId:      original.UserId,
		Description: fmt.Sprintf("Reversal of %s: %s", txID.String(), reason),
		RelatedType: "reversal",
		RelatedId:   txID.String(),
	}
	if delta < 0 {
		op.Type = models.TypeRefund
		op.Amount = -delta
		op.Metadata = &models.Metadata{Refund: &models.RefundMetadata{Reverses: txID.String()}}
	} else {
		op.Type = models.TypeAdminAdjustment
		op.Amount = -delta
		op.Metadata = &models.Metadata{Admin: &models.AdminMetadata{AdminId: adminID, Reason: op.Description}}
	}

	compensating, err := a.Store.Apply(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := a.Store.MarkTransactionReversed(ctx, txID); err != nil {
		// The compensating row is committed; the original keeps its
		// completed status until an operator resolves the mismatch.
		slog.Error("CRITICAL: compensating row written but original not marked reversed",
			"transaction_id", txID.String(), "compensating_id", compensating.Id.String(), "error", err)
		return compensating, err
	}

	a.audit(ctx, adminID, compensating, "reverse", reason)
	return compensating, nil
}

// Deactivate marks a wallet inactive and records who did it. The wallet
// row and its history are retained.
func (a *Adjuster) Deactivate(ctx context.Context, userID, reason string) error {
	adminID, ok := auth.AdminFrom(ctx)
	if !ok {
		return storage.ErrAdminUnauthorized
	}

	wallet, err := a.Store.GetWallet(ctx, userID)
	if err != nil {
		return err
	}
	if err := a.Store.DeactivateWallet(ctx, userID); err != nil {
		return err
	}

	entry := &models.AuditEntry{
		EntryId:       uuid.New().String(),
		AdminId:       adminID,
		TargetUserId:  userID,
		Action:        "deactivate",
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	if err := a.Store.AppendAuditEntry(ctx, entry); err != nil {
		slog.Error("CRITICAL: wallet deactivated but audit entry not written",
			"user_id", userID, "admin_id", adminID, "error", err)
	}
	return nil
}

func (a *Adjuster) audit(ctx context.Context, adminID string, tx *models.Transaction, action, reason string) {
	entry := &models.AuditEntry{
		EntryId:       uuid.New().String(),
		AdminId:       adminID,
		TargetUserId:  tx.UserId,
		Action:        action,
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	if err := a.Store.AppendAuditEntry(ctx, entry); err != nil {
		// The ledger row already records the adjustment; losing the audit
		// entry is loud but not a rollback.
		slog.Error("CRITICAL: adjustment applied but audit entry not written",
			"transaction_id", tx.Id.String(), "admin_id", adminID, "error", err)
	}
}
