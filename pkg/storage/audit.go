package storage

import (
	"context"

	"github.com/frmai/coin-ledger/pkg/models"
)

// AuditStore records privileged actions. Entries are append-only.
type AuditStore interface {
	AppendAuditEntry(ctx context.Context, entry *models.AuditEntry) error
	ListAuditEntries(ctx context.Context, targetUserID string, limit int32) ([]models.AuditEntry, error)
}
