package models

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransactionStatus defines the possible states of a transaction.
type TransactionStatus string

const (
	PENDING   TransactionStatus = "pending"
	COMPLETED TransactionStatus = "completed"
	FAILED    TransactionStatus = "failed"
	REVERSED  TransactionStatus = "reversed"
)

// TransactionType classifies a balance-affecting event.
type TransactionType string

const (
	TypeDeposit         TransactionType = "deposit"
	TypeWithdrawal      TransactionType = "withdrawal"
	TypeTransferIn      TransactionType = "transfer_in"
	TypeTransferOut     TransactionType = "transfer_out"
	TypePurchase        TransactionType = "purchase"
	TypeRefund          TransactionType = "refund"
	TypeAdminAdjustment TransactionType = "admin_adjustment"
	TypeBonus           TransactionType = "bonus"
	TypeHold            TransactionType = "hold"
	TypeHoldRelease     TransactionType = "hold_release"
	TypeHoldCapture     TransactionType = "hold_capture"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferIn, TypeTransferOut,
		TypePurchase, TypeRefund, TypeAdminAdjustment, TypeBonus,
		TypeHold, TypeHoldRelease, TypeHoldCapture:
		return true
	}
	return false
}

// BalanceDelta returns the signed change a completed transaction of the given
// type and amount applies to the wallet balance. Amounts are stored as
// positive magnitudes; admin adjustments carry their own sign.
func BalanceDelta(t TransactionType, amount int64) int64 {
	switch t {
	case TypeDeposit, TypeTransferIn, TypeRefund, TypeBonus:
		return amount
	case TypeWithdrawal, TypeTransferOut, TypePurchase, TypeHoldCapture:
		return -amount
	case TypeAdminAdjustment:
		return amount
	default:
		// hold and hold_release move locked_balance only.
		return 0
	}
}

// LockedDelta returns the signed change applied to locked_balance.
func LockedDelta(t TransactionType, amount int64) int64 {
	switch t {
	case TypeHold:
		return amount
	case TypeHoldRelease, TypeHoldCapture:
		return -amount
	default:
		return 0
	}
}

// Wallet represents a user's coin wallet. Balances are whole coin units.
// All mutations go through the ledger store's apply primitive; the version
// field backs its optimistic per-wallet lock.
type Wallet struct {
	UserId        string    `json:"user_id" dynamodbav:"user_id"`
	Balance       int64     `json:"balance" dynamodbav:"balance"`
	LockedBalance int64     `json:"locked_balance" dynamodbav:"locked_balance"`
	TotalEarned   int64     `json:"total_earned" dynamodbav:"total_earned"`
	TotalSpent    int64     `json:"total_spent" dynamodbav:"total_spent"`
	Version       int64     `json:"version" dynamodbav:"version"`
	Active        bool      `json:"active" dynamodbav:"active"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Available returns the portion of the balance eligible for new debits.
func (w *Wallet) Available() int64 {
	return w.Balance - w.LockedBalance
}

// Transaction is one append-only ledger row. Completed rows are never
// mutated; corrections happen through compensating rows.
type Transaction struct {
	Id            openapi_types.UUID `json:"id" dynamodbav:"id"`
	UserId        string             `json:"user_id" dynamodbav:"user_id"`
	Type          TransactionType    `json:"transaction_type" dynamodbav:"transaction_type"`
	Amount        int64              `json:"amount" dynamodbav:"amount"`
	BalanceBefore int64              `json:"balance_before" dynamodbav:"balance_before"`
	BalanceAfter  int64              `json:"balance_after" dynamodbav:"balance_after"`
	LockedBefore  int64              `json:"locked_before" dynamodbav:"locked_before"`
	LockedAfter   int64              `json:"locked_after" dynamodbav:"locked_after"`
	Description   string             `json:"description,omitempty" dynamodbav:"description,omitempty"`
	RelatedType   string             `json:"related_type,omitempty" dynamodbav:"related_type,omitempty"`
	RelatedId     string             `json:"related_id,omitempty" dynamodbav:"related_id,omitempty"`
	Metadata      *Metadata          `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
	Status        TransactionStatus  `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time          `json:"created_at" dynamodbav:"created_at"`
	ProcessedAt   *time.Time         `json:"processed_at,omitempty" dynamodbav:"processed_at,omitempty"`

	// Mirrored out of the metadata document so GSIs can serve the
	// idempotency and gateway-dedup lookups.
	IdempotencyKey string `json:"-" dynamodbav:"idempotency_key,omitempty"`
	ExternalTxnId  string `json:"-" dynamodbav:"external_txn_id,omitempty"`
}

// AuditEntry records a privileged action against a wallet.
type AuditEntry struct {
	EntryId       string    `json:"entry_id" dynamodbav:"entry_id"`
	AdminId       string    `json:"admin_id" dynamodbav:"admin_id"`
	TargetUserId  string    `json:"target_user_id" dynamodbav:"target_user_id"`
	Action        string    `json:"action" dynamodbav:"action"`
	Amount        int64     `json:"amount" dynamodbav:"amount"`
	BalanceBefore int64     `json:"balance_before" dynamodbav:"balance_before"`
	BalanceAfter  int64     `json:"balance_after" dynamodbav:"balance_after"`
	Reason        string    `json:"reason" dynamodbav:"reason"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Package is a purchasable service package from the catalog.
type Package struct {
	PackageId string `json:"package_id" dynamodbav:"package_id"`
	Name      string `json:"name" dynamodbav:"name"`
	Price     int64  `json:"price" dynamodbav:"price"`
	Active    bool   `json:"active" dynamodbav:"active"`
}
