package holds

import (
	"context"
	"errors"
	"fmt"

	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// relatedTypeHold correlates a hold's lifecycle rows. The hold row's own id
// doubles as the hold id and as related_id on release and capture rows.
const relatedTypeHold = "hold"

// Manager places, releases and captures holds against locked_balance.
type Manager struct {
	Store storage.ApiStore
}

// NewManager creates a new Manager.
func NewManager(store storage.ApiStore) *Manager {
	return &Manager{Store: store}
}

// PlaceHold earmarks amount of the user's available balance. The balance
// itself is untouched; locked_balance grows by amount.
func (m *Manager) PlaceHold(ctx context.Context, userID string, amount int64, reason string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: hold amount must be positive", storage.ErrInvalidAmount)
	}

	wallet, err := m.Store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet.Available() < amount {
		return nil, fmt.Errorf("%w: available %d, requested hold %d", storage.ErrInsufficientFunds, wallet.Available(), amount)
	}

	return m.Store.Apply(ctx, storage.Operation{
		UserId:      userID,
		Type:        models.TypeHold,
		Amount:      amount,
		Description: reason,
		Metadata:    &models.Metadata{Hold: &models.HoldMetadata{Reason: reason}},
	})
}

// ReleaseHold returns held funds to the available balance. Releasing a hold
// that was already released or captured is a no-op, not an error; the
// returned transaction is nil in that case.
func (m *Manager) ReleaseHold(ctx context.Context, holdID openapi_types.UUID) (*models.Transaction, error) {
	hold, settled, err := m.lookup(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, nil
	}

	tx, err := m.Store.Apply(ctx, storage.Operation{
		UserId:      hold.UserId,
		Type:        models.TypeHoldRelease,
		Amount:      hold.Amount,
		Description: fmt.Sprintf("Release of hold %s", holdID.String()),
		RelatedType: relatedTypeHold,
		RelatedId:   holdID.String(),
		Metadata:    &models.Metadata{Hold: metadataOf(hold)},
	})
	if err != nil {
		// A concurrent release or capture can settle the hold between the
		// lookup and the apply; the loser sees locked_balance go negative.
		// Re-check so the loser gets the same no-op a late retry would.
		if errors.Is(err, storage.ErrInsufficientFunds) {
			if _, nowSettled, lerr := m.lookup(ctx, holdID); lerr == nil && nowSettled {
				return nil, nil
			}
		}
		return nil, err
	}
	return tx, nil
}

// CaptureResult describes the rows written by a capture.
type CaptureResult struct {
	Captured models.Transaction  `json:"captured"`
	Released *models.Transaction `json:"released,omitempty"`
}

// CaptureHold converts a hold into a completed debit of finalAmount, at
// most the held amount. locked_balance and balance shrink together in one
// atomic step; any unused remainder is released in the same unit.
func (m *Manager) CaptureHold(ctx context.Context, holdID openapi_types.UUID, finalAmount int64) (*CaptureResult, error) {
	hold, settled, err := m.lookup(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, fmt.Errorf("%w: %s", storage.ErrHoldNotActive, holdID.String())
	}
	if finalAmount <= 0 {
		return nil, fmt.Errorf("%w: capture amount must be positive", storage.ErrInvalidAmount)
	}
	if finalAmount > hold.Amount {
		return nil, fmt.Errorf("%w: capture %d exceeds held %d", storage.ErrInvalidAmount, finalAmount, hold.Amount)
	}

	ops := []storage.Operation{{
		UserId:      hold.UserId,
		Type:        models.TypeHoldCapture,
		Amount:      finalAmount,
		Description: fmt.Sprintf("Capture of hold %s", holdID.String()),
		RelatedType: relatedTypeHold,
		RelatedId:   holdID.String(),
		Metadata:    &models.Metadata{Hold: metadataOf(hold)},
	}}

	if remainder := hold.Amount - finalAmount; remainder > 0 {
		ops = append(ops, storage.Operation{
			UserId:      hold.UserId,
			Type:        models.TypeHoldRelease,
			Amount:      remainder,
			Description: fmt.Sprintf("Release of unused portion of hold %s", holdID.String()),
			RelatedType: relatedTypeHold,
			RelatedId:   holdID.String(),
			Metadata:    &models.Metadata{Hold: metadataOf(hold)},
		})
	}

	txs, err := m.Store.ApplyMany(ctx, ops)
	if err != nil {
		// Same race as in ReleaseHold; a capture losing it reports the
		// hold as settled rather than a spurious funds failure.
		if errors.Is(err, storage.ErrInsufficientFunds) {
			if _, nowSettled, lerr := m.lookup(ctx, holdID); lerr == nil && nowSettled {
				return nil, fmt.Errorf("%w: %s", storage.ErrHoldNotActive, holdID.String())
			}
		}
		return nil, err
	}

	result := &CaptureResult{}
	for i := range txs {
		switch txs[i].Type {
		case models.TypeHoldCapture:
			result.Captured = txs[i]
		case models.TypeHoldRelease:
			result.Released = &txs[i]
		}
	}
	return result, nil
}

// lookup fetches the hold row and reports whether the hold has already been
// released or captured.
func (m *Manager) lookup(ctx context.Context, holdID openapi_types.UUID) (*models.Transaction, bool, error) {
	hold, err := m.Store.GetTransaction(ctx, holdID)
	if err != nil {
		return nil, false, err
	}
	if hold.Type != models.TypeHold {
		return nil, false, fmt.Errorf("%w: %s is not a hold", storage.ErrTransactionNotFound, holdID.String())
	}

	lifecycle, err := m.Store.ListByRelatedId(ctx, relatedTypeHold, holdID.String())
	if err != nil {
		return nil, false, err
	}
	for _, tx := range lifecycle {
		if tx.Type == models.TypeHoldRelease || tx.Type == models.TypeHoldCapture {
			return hold, true, nil
		}
	}
	return hold, false, nil
}

func metadataOf(hold *models.Transaction) *models.HoldMetadata {
	if hold.Metadata != nil && hold.Metadata.Hold != nil {
		return hold.Metadata.Hold
	}
	return &models.HoldMetadata{}
}
