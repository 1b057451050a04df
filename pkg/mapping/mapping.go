package mapping

import (
	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/models"
)

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(wallet *models.Wallet) *api.Wallet {
	return &api.Wallet{
		UserId:           wallet.UserId,
		Balance:          wallet.Balance,
		LockedBalance:    wallet.LockedBalance,
		AvailableBalance: wallet.Available(),
		TotalEarned:      wallet.TotalEarned,
		TotalSpent:       wallet.TotalSpent,
		Active:           wallet.Active,
		CreatedAt:        wallet.CreatedAt,
		UpdatedAt:        wallet.UpdatedAt,
	}
}

// ToApiTransaction converts a domain Transaction model to an API
// Transaction model. Metadata stays internal.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:            tx.Id,
		UserId:        tx.UserId,
		Type:          api.TransactionType(tx.Type),
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		LockedBefore:  tx.LockedBefore,
		LockedAfter:   tx.LockedAfter,
		Description:   tx.Description,
		RelatedType:   tx.RelatedType,
		RelatedId:     tx.RelatedId,
		Status:        api.TransactionStatus(tx.Status),
		CreatedAt:     tx.CreatedAt,
		ProcessedAt:   tx.ProcessedAt,
	}
}

// ToApiTransactions converts a slice of domain transactions.
func ToApiTransactions(txs []models.Transaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i := range txs {
		out[i] = *ToApiTransaction(&txs[i])
	}
	return out
}

// ToApiAuditEntry converts a domain AuditEntry model to an API model.
func ToApiAuditEntry(entry *models.AuditEntry) *api.AuditEntry {
	return &api.AuditEntry{
		EntryId:       entry.EntryId,
		AdminId:       entry.AdminId,
		TargetUserId:  entry.TargetUserId,
		Action:        entry.Action,
		Amount:        entry.Amount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Reason:        entry.Reason,
		CreatedAt:     entry.CreatedAt,
	}
}
