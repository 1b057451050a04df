package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/frmai/coin-ledger/pkg/websockets"
	"github.com/google/uuid"
)

// Engine orchestrates peer-to-peer balance moves as one atomic unit across
// both wallets.
type Engine struct {
	Store     storage.ApiStore
	Publisher websockets.Publisher
}

// NewEngine creates a new Engine. The publisher may be nil.
func NewEngine(store storage.ApiStore, publisher websockets.Publisher) *Engine {
	return &Engine{Store: store, Publisher: publisher}
}

// Result describes a completed (or replayed) transfer.
type Result struct {
	TransferId string             `json:"transfer_id"`
	Outgoing   models.Transaction `json:"outgoing"`
	Incoming   models.Transaction `json:"incoming"`
	Replayed   bool               `json:"replayed"`
}

// Transfer moves amount from sender to recipient. Both legs share a
// generated transfer id as related_id and either both commit or neither
// does. Retried requests carrying the same idempotency key return the
// original result without moving funds again.
func (e *Engine) Transfer(ctx context.Context, senderID, recipientID string, amount int64, description, idempotencyKey string) (*Result, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: user %s", storage.ErrSelfTransfer, senderID)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: transfer amount must be positive", storage.ErrInvalidAmount)
	}

	if idempotencyKey != "" {
		prior, err := e.replay(ctx, senderID, recipientID, amount, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return prior, nil
		}
	}

	// Available balance, not raw balance: held funds are not transferable.
	senderWallet, err := e.Store.GetWallet(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if senderWallet.Available() < amount {
		return nil, fmt.Errorf("%w: available %d, requested %d", storage.ErrInsufficientFunds, senderWallet.Available(), amount)
	}

	transferID := uuid.New().String()
	if description == "" {
		description = fmt.Sprintf("Transfer of %d coins", amount)
	}

	ops := []storage.Operation{
		{
			UserId:      senderID,
			Type:        models.TypeTransferOut,
			Amount:      amount,
			Description: fmt.Sprintf("%s to %s", description, recipientID),
			RelatedType: "transfer",
			RelatedId:   transferID,
			Metadata: &models.Metadata{Transfer: &models.TransferMetadata{
				TransferId:     transferID,
				IdempotencyKey: idempotencyKey,
				Counterparty:   recipientID,
			}},
			// Only the outgoing leg carries the key top-level so the
			// replay lookup resolves to a single row.
			IdempotencyKey: idempotencyKey,
		},
		{
			UserId:      recipientID,
			Type:        models.TypeTransferIn,
			Amount:      amount,
			Description: fmt.Sprintf("%s from %s", description, senderID),
			RelatedType: "transfer",
			RelatedId:   transferID,
			Metadata: &models.Metadata{Transfer: &models.TransferMetadata{
				TransferId:     transferID,
				IdempotencyKey: idempotencyKey,
				Counterparty:   senderID,
			}},
		},
	}

	txs, err := e.Store.ApplyMany(ctx, ops)
	if err != nil {
		return nil, err
	}

	result := &Result{TransferId: transferID}
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeTransferOut:
			result.Outgoing = tx
		case models.TypeTransferIn:
			result.Incoming = tx
		}
	}

	e.notify(ctx, result)
	return result, nil
}

// replay returns the prior result for a known idempotency key, nil when the
// key is fresh, or ErrDuplicateIdempotencyKey when the key was used with
// different parameters.
func (e *Engine) replay(ctx context.Context, senderID, recipientID string, amount int64, idempotencyKey string) (*Result, error) {
	prior, err := e.Store.FindCompletedByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, nil
	}

	md := prior.Metadata
	if prior.Type != models.TypeTransferOut || md == nil || md.Transfer == nil ||
		prior.UserId != senderID || md.Transfer.Counterparty != recipientID || prior.Amount != amount {
		return nil, fmt.Errorf("%w: key %q", storage.ErrDuplicateIdempotencyKey, idempotencyKey)
	}

	legs, err := e.Store.ListByRelatedId(ctx, "transfer", prior.RelatedId)
	if err != nil {
		return nil, err
	}

	result := &Result{TransferId: prior.RelatedId, Replayed: true}
	for _, tx := range legs {
		switch tx.Type {
		case models.TypeTransferOut:
			result.Outgoing = tx
		case models.TypeTransferIn:
			result.Incoming = tx
		}
	}
	return result, nil
}

// notify pushes wallet updates to both parties. Push failures never fail
// the transfer.
func (e *Engine) notify(ctx context.Context, result *Result) {
	if e.Publisher == nil {
		return
	}
	for _, tx := range []models.Transaction{result.Outgoing, result.Incoming} {
		msg := websockets.Message{
			UserID: tx.UserId,
			Type:   websockets.MessageTypeWalletUpdate,
			Payload: websockets.WalletUpdatePayload{
				UserID:        tx.UserId,
				TransactionID: tx.Id.String(),
				Change:        models.BalanceDelta(tx.Type, tx.Amount),
				NewBalance:    tx.BalanceAfter,
				NewLocked:     tx.LockedAfter,
			},
		}
		if err := e.Publisher.Publish(ctx, msg); err != nil {
			slog.Error("failed to publish wallet update", "user_id", tx.UserId, "error", err)
		}
	}
}
