package models

import (
	"errors"
	"fmt"
)

// Metadata is the closed set of per-type transaction metadata variants.
// Exactly the variant matching the transaction type must be populated, so
// invariant-checking code can stay exhaustive instead of digging through an
// untyped blob.
type Metadata struct {
	Transfer *TransferMetadata `json:"transfer,omitempty" dynamodbav:"transfer,omitempty"`
	Purchase *PurchaseMetadata `json:"purchase,omitempty" dynamodbav:"purchase,omitempty"`
	Deposit  *DepositMetadata  `json:"deposit,omitempty" dynamodbav:"deposit,omitempty"`
	Hold     *HoldMetadata     `json:"hold,omitempty" dynamodbav:"hold,omitempty"`
	Admin    *AdminMetadata    `json:"admin,omitempty" dynamodbav:"admin,omitempty"`
	Refund   *RefundMetadata   `json:"refund,omitempty" dynamodbav:"refund,omitempty"`
}

// TransferMetadata is attached to both legs of a peer transfer.
type TransferMetadata struct {
	TransferId     string `json:"transfer_id" dynamodbav:"transfer_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty" dynamodbav:"idempotency_key,omitempty"`
	Counterparty   string `json:"counterparty" dynamodbav:"counterparty"`
}

// PurchaseMetadata records the catalog state a purchase debit was priced at.
type PurchaseMetadata struct {
	PackageId      string `json:"package_id" dynamodbav:"package_id"`
	Price          int64  `json:"price" dynamodbav:"price"`
	IdempotencyKey string `json:"idempotency_key,omitempty" dynamodbav:"idempotency_key,omitempty"`
}

// DepositMetadata links a deposit to the upstream gateway settlement.
type DepositMetadata struct {
	ExternalTxnId string `json:"external_txn_id" dynamodbav:"external_txn_id"`
	Gateway       string `json:"gateway,omitempty" dynamodbav:"gateway,omitempty"`
}

// HoldMetadata is shared by hold, hold_release and hold_capture rows.
type HoldMetadata struct {
	Reason string `json:"reason,omitempty" dynamodbav:"reason,omitempty"`
}

// AdminMetadata identifies the operator behind an admin adjustment.
type AdminMetadata struct {
	AdminId string `json:"admin_id" dynamodbav:"admin_id"`
	Reason  string `json:"reason" dynamodbav:"reason"`
}

// RefundMetadata links a compensating row to the transaction it reverses.
type RefundMetadata struct {
	Reverses string `json:"reverses" dynamodbav:"reverses"`
}

var errMetadataMismatch = errors.New("metadata variant does not match transaction type")

// Validate checks that m carries exactly the variant required for t.
// A nil Metadata is acceptable for types without mandatory metadata.
func (m *Metadata) Validate(t TransactionType) error {
	switch t {
	case TypeTransferIn, TypeTransferOut:
		if m == nil || m.Transfer == nil || m.Transfer.TransferId == "" || m.Transfer.Counterparty == "" {
			return fmt.Errorf("%w: %s requires transfer metadata", errMetadataMismatch, t)
		}
	case TypePurchase:
		if m == nil || m.Purchase == nil || m.Purchase.PackageId == "" {
			return fmt.Errorf("%w: purchase requires purchase metadata", errMetadataMismatch)
		}
	case TypeDeposit:
		if m != nil && m.Deposit != nil && m.Deposit.ExternalTxnId == "" {
			return fmt.Errorf("%w: deposit metadata requires an external transaction id", errMetadataMismatch)
		}
	case TypeAdminAdjustment:
		if m == nil || m.Admin == nil || m.Admin.AdminId == "" {
			return fmt.Errorf("%w: admin_adjustment requires admin metadata", errMetadataMismatch)
		}
	case TypeRefund:
		if m == nil || m.Refund == nil || m.Refund.Reverses == "" {
			return fmt.Errorf("%w: refund requires a reference to the reversed transaction", errMetadataMismatch)
		}
	case TypeHold, TypeHoldRelease, TypeHoldCapture, TypeWithdrawal, TypeBonus:
		// optional
	default:
		return fmt.Errorf("unknown transaction type %q", t)
	}
	return nil
}
