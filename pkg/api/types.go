// Package api holds the request and response types for the HTTP surface.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransactionStatus defines the lifecycle state of a transaction.
type TransactionStatus string

// TransactionType classifies a balance-affecting event.
type TransactionType string

// NewWallet defines the body for creating a wallet.
type NewWallet struct {
	UserId string `json:"user_id"`
}

// Wallet is the API representation of a user's wallet.
type Wallet struct {
	UserId           string    `json:"user_id"`
	Balance          int64     `json:"balance"`
	LockedBalance    int64     `json:"locked_balance"`
	AvailableBalance int64     `json:"available_balance"`
	TotalEarned      int64     `json:"total_earned"`
	TotalSpent       int64     `json:"total_spent"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Transaction is the API representation of one ledger row.
type Transaction struct {
	Id            openapi_types.UUID `json:"id"`
	UserId        string             `json:"user_id"`
	Type          TransactionType    `json:"transaction_type"`
	Amount        int64              `json:"amount"`
	BalanceBefore int64              `json:"balance_before"`
	BalanceAfter  int64              `json:"balance_after"`
	LockedBefore  int64              `json:"locked_before"`
	LockedAfter   int64              `json:"locked_after"`
	Description   string             `json:"description,omitempty"`
	RelatedType   string             `json:"related_type,omitempty"`
	RelatedId     string             `json:"related_id,omitempty"`
	Status        TransactionStatus  `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	ProcessedAt   *time.Time         `json:"processed_at,omitempty"`
}

// TransactionPage is one page of a wallet's history.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	NextCursor   string        `json:"next_cursor,omitempty"`
}

// NewTransfer defines the body for a peer-to-peer transfer.
type NewTransfer struct {
	FromUserId     string `json:"from_user_id"`
	ToUserId       string `json:"to_user_id"`
	Amount         int64  `json:"amount"`
	Description    string `json:"description,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// TransferResult describes both legs of a completed transfer.
type TransferResult struct {
	TransferId string      `json:"transfer_id"`
	Outgoing   Transaction `json:"outgoing"`
	Incoming   Transaction `json:"incoming"`
	Replayed   bool        `json:"replayed"`
}

// NewPurchase defines the body for buying a catalog package.
type NewPurchase struct {
	UserId         string `json:"user_id"`
	PackageId      string `json:"package_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// PurchaseResult is the outcome of a purchase request.
type PurchaseResult struct {
	Transaction Transaction `json:"transaction"`
	Replayed    bool        `json:"replayed"`
}

// PaymentConfirmation is the gateway webhook body for a settled payment.
type PaymentConfirmation struct {
	ExternalTxnId string `json:"external_txn_id"`
	UserId        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Gateway       string `json:"gateway,omitempty"`
}

// DepositResult is the outcome of ingesting a payment confirmation.
type DepositResult struct {
	Transaction Transaction `json:"transaction"`
	Replayed    bool        `json:"replayed"`
}

// NewHold defines the body for placing a hold on available funds.
type NewHold struct {
	UserId string `json:"user_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// CaptureRequest defines the body for capturing a hold.
type CaptureRequest struct {
	FinalAmount int64 `json:"final_amount"`
}

// CaptureResult describes the rows written by a hold capture.
type CaptureResult struct {
	Captured Transaction  `json:"captured"`
	Released *Transaction `json:"released,omitempty"`
}

// AdminAdjustment defines the body for a privileged balance adjustment.
// Negative amounts revoke coins.
type AdminAdjustment struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// ReversalRequest defines the body for reversing a completed transaction.
type ReversalRequest struct {
	Reason string `json:"reason"`
}

// AuditEntry is the API representation of a privileged action record.
type AuditEntry struct {
	EntryId       string    `json:"entry_id"`
	AdminId       string    `json:"admin_id"`
	TargetUserId  string    `json:"target_user_id"`
	Action        string    `json:"action"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

// WalletStats summarizes a wallet's activity over a trailing window.
type WalletStats struct {
	UserId            string           `json:"user_id"`
	PeriodDays        int              `json:"period_days"`
	TotalIncome       int64            `json:"total_income"`
	TotalExpense      int64            `json:"total_expense"`
	NetChange         int64            `json:"net_change"`
	TransactionCounts map[string]int64 `json:"transaction_counts"`
	CurrentBalance    int64            `json:"current_balance"`
	LockedBalance     int64            `json:"locked_balance"`
}
