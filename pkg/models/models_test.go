package models_test

import (
	"testing"

	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestBalanceDelta(t *testing.T) {
	t.Run("Credits", func(t *testing.T) {
		assert.Equal(t, int64(100), models.BalanceDelta(models.TypeDeposit, 100))
		assert.Equal(t, int64(100), models.BalanceDelta(models.TypeTransferIn, 100))
		assert.Equal(t, int64(100), models.BalanceDelta(models.TypeRefund, 100))
		assert.Equal(t, int64(100), models.BalanceDelta(models.TypeBonus, 100))
	})

	t.Run("Debits", func(t *testing.T) {
		assert.Equal(t, int64(-100), models.BalanceDelta(models.TypeWithdrawal, 100))
		assert.Equal(t, int64(-100), models.BalanceDelta(models.TypeTransferOut, 100))
		assert.Equal(t, int64(-100), models.BalanceDelta(models.TypePurchase, 100))
		assert.Equal(t, int64(-100), models.BalanceDelta(models.TypeHoldCapture, 100))
	})

	t.Run("Admin Adjustment Keeps Its Sign", func(t *testing.T) {
		assert.Equal(t, int64(50), models.BalanceDelta(models.TypeAdminAdjustment, 50))
		assert.Equal(t, int64(-50), models.BalanceDelta(models.TypeAdminAdjustment, -50))
	})

	t.Run("Hold Lifecycle Leaves Balance Alone", func(t *testing.T) {
		assert.Equal(t, int64(0), models.BalanceDelta(models.TypeHold, 100))
		assert.Equal(t, int64(0), models.BalanceDelta(models.TypeHoldRelease, 100))
	})
}

func TestLockedDelta(t *testing.T) {
	assert.Equal(t, int64(100), models.LockedDelta(models.TypeHold, 100))
	assert.Equal(t, int64(-100), models.LockedDelta(models.TypeHoldRelease, 100))
	assert.Equal(t, int64(-100), models.LockedDelta(models.TypeHoldCapture, 100))
	assert.Equal(t, int64(0), models.LockedDelta(models.TypeDeposit, 100))
	assert.Equal(t, int64(0), models.LockedDelta(models.TypeTransferOut, 100))
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, models.TypeDeposit.Valid())
	assert.True(t, models.TypeHoldCapture.Valid())
	assert.False(t, models.TransactionType("bogus").Valid())
	assert.False(t, models.TransactionType("").Valid())
}

func TestWalletAvailable(t *testing.T) {
	w := &models.Wallet{Balance: 100, LockedBalance: 30}
	assert.Equal(t, int64(70), w.Available())
}

func TestMetadataValidate(t *testing.T) {
	t.Run("Transfer Requires Transfer Metadata", func(t *testing.T) {
		var m *models.Metadata
		assert.Error(t, m.Validate(models.TypeTransferOut))

		m = &models.Metadata{Transfer: &models.TransferMetadata{TransferId: "t-1", Counterparty: "user-b"}}
		assert.NoError(t, m.Validate(models.TypeTransferOut))
		assert.NoError(t, m.Validate(models.TypeTransferIn))
	})

	t.Run("Purchase Requires Package Id", func(t *testing.T) {
		m := &models.Metadata{Purchase: &models.PurchaseMetadata{}}
		assert.Error(t, m.Validate(models.TypePurchase))

		m.Purchase.PackageId = "pkg-1"
		assert.NoError(t, m.Validate(models.TypePurchase))
	})

	t.Run("Deposit Metadata Is Optional But Must Be Complete", func(t *testing.T) {
		var m *models.Metadata
		assert.NoError(t, m.Validate(models.TypeDeposit))

		m = &models.Metadata{Deposit: &models.DepositMetadata{}}
		assert.Error(t, m.Validate(models.TypeDeposit))

		m.Deposit.ExternalTxnId = "ext-1"
		assert.NoError(t, m.Validate(models.TypeDeposit))
	})

	t.Run("Admin Adjustment Requires Operator", func(t *testing.T) {
		m := &models.Metadata{Admin: &models.AdminMetadata{Reason: "promo"}}
		assert.Error(t, m.Validate(models.TypeAdminAdjustment))

		m.Admin.AdminId = "admin-1"
		assert.NoError(t, m.Validate(models.TypeAdminAdjustment))
	})

	t.Run("Refund Requires Reversed Reference", func(t *testing.T) {
		m := &models.Metadata{Refund: &models.RefundMetadata{}}
		assert.Error(t, m.Validate(models.TypeRefund))

		m.Refund.Reverses = "tx-1"
		assert.NoError(t, m.Validate(models.TypeRefund))
	})

	t.Run("Hold Types Accept Nil Metadata", func(t *testing.T) {
		var m *models.Metadata
		assert.NoError(t, m.Validate(models.TypeHold))
		assert.NoError(t, m.Validate(models.TypeHoldRelease))
		assert.NoError(t, m.Validate(models.TypeHoldCapture))
	})
}
