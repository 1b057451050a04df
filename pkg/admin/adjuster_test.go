package admin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frmai/coin-ledger/pkg/admin"
	"github.com/frmai/coin-ledger/pkg/auth"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/frmai/coin-ledger/pkg/storage/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

func adminCtx() context.Context {
	return auth.WithAdmin(context.Background(), "admin-1")
}

func TestAdjust(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.Storage)

		adjusted := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeAdminAdjustment, Amount: 100, Status: models.COMPLETED}
		var captured storage.Operation
		mockStore.On("Apply", mock.Anything, mock.AnythingOfType("storage.Operation")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(storage.Operation)
			}).
			Return(adjusted, nil)
		mockStore.On("AppendAuditEntry", mock.Anything, mock.AnythingOfType("*models.AuditEntry")).Return(nil)

		adjuster := admin.NewAdjuster(mockStore)
		tx, err := adjuster.Adjust(adminCtx(), "user-a", 100, "goodwill credit")

		assert.NoError(t, err)
		assert.Equal(t, models.TypeAdminAdjustment, tx.Type)
		assert.Equal(t, "admin-1", captured.Metadata.Admin.AdminId)
		mockStore.AssertExpectations(t)
	})

	t.Run("No Admin In Context", func(t *testing.T) {
		adjuster := admin.NewAdjuster(new(mocks.Storage))
		_, err := adjuster.Adjust(context.Background(), "user-a", 100, "goodwill credit")
		assert.ErrorIs(t, err, storage.ErrAdminUnauthorized)
	})

	t.Run("Zero Amount", func(t *testing.T) {
		adjuster := admin.NewAdjuster(new(mocks.Storage))
		_, err := adjuster.Adjust(adminCtx(), "user-a", 0, "noop")
		assert.ErrorIs(t, err, storage.ErrInvalidAmount)
	})

	t.Run("Audit Failure Does Not Roll Back", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		adjusted := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeAdminAdjustment, Amount: -50, Status: models.COMPLETED}
		mockStore.On("Apply", mock.Anything, mock.Anything).Return(adjusted, nil)
		mockStore.On("AppendAuditEntry", mock.Anything, mock.Anything).Return(errors.New("audit table unavailable"))

		adjuster := admin.NewAdjuster(mockStore)
		tx, err := adjuster.Adjust(adminCtx(), "user-a", -50, "revoke promo")

		assert.NoError(t, err)
		assert.NotNil(t, tx)
		mockStore.AssertExpectations(t)
	})
}

func TestDeactivate(t *testing.T) {
	t.Run("Success Leaves An Audit Entry", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetWallet", mock.Anything, "user-a").Return(&models.Wallet{UserId: "user-a", Balance: 100, Active: true}, nil)
		mockStore.On("DeactivateWallet", mock.Anything, "user-a").Return(nil)

		var entry *models.AuditEntry
		mockStore.On("AppendAuditEntry", mock.Anything, mock.AnythingOfType("*models.AuditEntry")).
			Run(func(args mock.Arguments) {
				entry = args.Get(1).(*models.AuditEntry)
			}).
			Return(nil)

		adjuster := admin.NewAdjuster(mockStore)
		err := adjuster.Deactivate(adminCtx(), "user-a", "account closed")

		assert.NoError(t, err)
		assert.Equal(t, "deactivate", entry.Action)
		assert.Equal(t, "admin-1", entry.AdminId)
		assert.Equal(t, int64(100), entry.BalanceBefore)
		mockStore.AssertExpectations(t)
	})

	t.Run("Unknown Wallet", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		mockStore.On("GetWallet", mock.Anything, "user-z").Return(nil, storage.ErrWalletNotFound)

		adjuster := admin.NewAdjuster(mockStore)
		err := adjuster.Deactivate(adminCtx(), "user-z", "")

		assert.ErrorIs(t, err, storage.ErrWalletNotFound)
		mockStore.AssertNotCalled(t, "DeactivateWallet", mock.Anything, mock.Anything)
	})

	t.Run("No Admin In Context", func(t *testing.T) {
		adjuster := admin.NewAdjuster(new(mocks.Storage))
		err := adjuster.Deactivate(context.Background(), "user-a", "")
		assert.ErrorIs(t, err, storage.ErrAdminUnauthorized)
	})
}

func TestReverse(t *testing.T) {
	txID := openapi_types.UUID(uuid.New())

	t.Run("Debit Is Reversed With A Refund", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		original := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypePurchase, Amount: 150, Status: models.COMPLETED}
		mockStore.On("GetTransaction", mock.Anything, txID).Return(original, nil)

		refund := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeRefund, Amount: 150, Status: models.COMPLETED}
		var captured storage.Operation
		mockStore.On("Apply", mock.Anything, mock.AnythingOfType("storage.Operation")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(storage.Operation)
			}).
			Return(refund, nil)
		mockStore.On("MarkTransactionReversed", mock.Anything, txID).Return(nil)
		mockStore.On("AppendAuditEntry", mock.Anything, mock.Anything).Return(nil)

		adjuster := admin.NewAdjuster(mockStore)
		tx, err := adjuster.Reverse(adminCtx(), txID, "accidental purchase")

		assert.NoError(t, err)
		assert.Equal(t, models.TypeRefund, tx.Type)
		assert.Equal(t, models.TypeRefund, captured.Type)
		assert.Equal(t, int64(150), captured.Amount)
		assert.Equal(t, txID.String(), captured.Metadata.Refund.Reverses)
		mockStore.AssertExpectations(t)
	})

	t.Run("Credit Is Reversed With A Negative Adjustment", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		original := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypeBonus, Amount: 200, Status: models.COMPLETED}
		mockStore.On("GetTransaction", mock.Anything, txID).Return(original, nil)

		compensating := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeAdminAdjustment, Amount: -200, Status: models.COMPLETED}
		var captured storage.Operation
		mockStore.On("Apply", mock.Anything, mock.AnythingOfType("storage.Operation")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(storage.Operation)
			}).
			Return(compensating, nil)
		mockStore.On("MarkTransactionReversed", mock.Anything, txID).Return(nil)
		mockStore.On("AppendAuditEntry", mock.Anything, mock.Anything).Return(nil)

		adjuster := admin.NewAdjuster(mockStore)
		_, err := adjuster.Reverse(adminCtx(), txID, "bonus granted in error")

		assert.NoError(t, err)
		assert.Equal(t, models.TypeAdminAdjustment, captured.Type)
		assert.Equal(t, int64(-200), captured.Amount)
		mockStore.AssertExpectations(t)
	})

	t.Run("Not Completed", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		original := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypePurchase, Amount: 150, Status: models.PENDING}
		mockStore.On("GetTransaction", mock.Anything, txID).Return(original, nil)

		adjuster := admin.NewAdjuster(mockStore)
		_, err := adjuster.Reverse(adminCtx(), txID, "")

		assert.ErrorIs(t, err, storage.ErrNotReversible)
		mockStore.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	})

	t.Run("Zero Delta Rows Are Not Reversible", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		original := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypeHold, Amount: 40, Status: models.COMPLETED}
		mockStore.On("GetTransaction", mock.Anything, txID).Return(original, nil)

		adjuster := admin.NewAdjuster(mockStore)
		_, err := adjuster.Reverse(adminCtx(), txID, "")

		assert.ErrorIs(t, err, storage.ErrNotReversible)
	})

	t.Run("Mark Reversed Failure Surfaces The Error", func(t *testing.T) {
		mockStore := new(mocks.Storage)
		original := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypePurchase, Amount: 150, Status: models.COMPLETED}
		mockStore.On("GetTransaction", mock.Anything, txID).Return(original, nil)

		refund := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeRefund, Amount: 150, Status: models.COMPLETED}
		mockStore.On("Apply", mock.Anything, mock.Anything).Return(refund, nil)
		mockStore.On("MarkTransactionReversed", mock.Anything, txID).Return(errors.New("conditional check failed"))

		adjuster := admin.NewAdjuster(mockStore)
		tx, err := adjuster.Reverse(adminCtx(), txID, "accidental purchase")

		// The compensating row is committed either way.
		assert.Error(t, err)
		assert.NotNil(t, tx)
		mockStore.AssertNotCalled(t, "AppendAuditEntry", mock.Anything, mock.Anything)
	})

	t.Run("No Admin In Context", func(t *testing.T) {
		adjuster := admin.NewAdjuster(new(mocks.Storage))
		_, err := adjuster.Reverse(context.Background(), txID, "")
		assert.ErrorIs(t, err, storage.ErrAdminUnauthorized)
	})
}
