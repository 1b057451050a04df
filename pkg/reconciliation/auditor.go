package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frmai/coin-ledger/pkg/alerts"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
)

// stalePendingThreshold is how long a row may sit in pending before the
// sweep marks it failed.
const stalePendingThreshold = 20 * time.Minute

// Auditor recomputes wallet balances from the transaction log and flags
// drift. Mismatches are reported, never auto-corrected.
type Auditor struct {
	Store   storage.ReconciliationStore
	Alerter alerts.Alerter
}

// NewAuditor creates a new Auditor.
func NewAuditor(store storage.ReconciliationStore, alerter alerts.Alerter) *Auditor {
	return &Auditor{Store: store, Alerter: alerter}
}

// Report summarizes one reconciliation run.
type Report struct {
	WalletsChecked int
	Drifts         []alerts.Alert
	SweptPending   int
}

// Run audits every wallet against its completed transaction history and
// sweeps stale pending rows to failed.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	wallets, err := a.Store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for reconciliation: %w", err)
	}

	report := &Report{}
	for i := range wallets {
		wallet := &wallets[i]
		report.WalletsChecked++

		drift, err := a.checkWallet(ctx, wallet)
		if err != nil {
			return nil, err
		}
		if drift == nil {
			continue
		}

		report.Drifts = append(report.Drifts, *drift)
		slog.Error("wallet balance drift detected",
			"user_id", wallet.UserId,
			"stored_balance", drift.StoredBalance,
			"computed_balance", drift.ComputedBalance,
			"stored_locked", drift.StoredLocked,
			"computed_locked", drift.ComputedLocked,
		)
		if a.Alerter != nil {
			if err := a.Alerter.Publish(ctx, *drift); err != nil {
				slog.Error("failed to publish integrity alert", "user_id", wallet.UserId, "error", err)
			}
		}
	}

	swept, err := a.sweepStalePending(ctx)
	if err != nil {
		return nil, err
	}
	report.SweptPending = swept

	return report, nil
}

// checkWallet returns a drift alert when the stored balances disagree with
// the signed sums over the wallet's completed transactions, nil otherwise.
func (a *Auditor) checkWallet(ctx context.Context, wallet *models.Wallet) (*alerts.Alert, error) {
	txs, err := a.Store.ListSettledByUser(ctx, wallet.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", wallet.UserId, err)
	}

	var balance, locked int64
	for _, tx := range txs {
		balance += models.BalanceDelta(tx.Type, tx.Amount)
		locked += models.LockedDelta(tx.Type, tx.Amount)
	}

	if balance == wallet.Balance && locked == wallet.LockedBalance {
		return nil, nil
	}

	return &alerts.Alert{
		Type:            alerts.AlertBalanceDrift,
		UserId:          wallet.UserId,
		StoredBalance:   wallet.Balance,
		ComputedBalance: balance,
		StoredLocked:    wallet.LockedBalance,
		ComputedLocked:  locked,
		DetectedAt:      time.Now(),
	}, nil
}

// sweepStalePending moves rows stuck in pending to failed. This is the
// explicit scheduled replacement for trigger-style cleanup: it goes through
// the same store contract as every other write.
func (a *Auditor) sweepStalePending(ctx context.Context) (int, error) {
	stale, err := a.Store.ListStalePending(ctx, stalePendingThreshold)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale pending transactions: %w", err)
	}

	swept := 0
	for _, tx := range stale {
		if err := a.Store.MarkTransactionFailed(ctx, tx.Id); err != nil {
			slog.Error("failed to sweep pending transaction", "transaction_id", tx.Id.String(), "error", err)
			continue
		}
		swept++
	}
	return swept, nil
}
