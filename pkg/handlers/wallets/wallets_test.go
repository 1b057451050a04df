package wallets_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/wallets"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/frmai/coin-ledger/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCreateWallet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		created := &models.Wallet{UserId: "user-a", Version: 1, Active: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mockStore.On("CreateWallet", mock.Anything, "user-a").Return(created, nil)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodPost, "/wallets", strings.NewReader(`{"user_id":"user-a"}`))
		rec := httptest.NewRecorder()
		handler.CreateWallet(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		wallet := decode[api.Wallet](t, rec)
		assert.Equal(t, "user-a", wallet.UserId)
		assert.Equal(t, int64(0), wallet.Balance)
		mockStore.AssertExpectations(t)
	})

	t.Run("Missing User Id", func(t *testing.T) {
		handler := wallets.NewWalletsHandler(new(mocks.ApiStore))
		req := httptest.NewRequest(http.MethodPost, "/wallets", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.CreateWallet(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		handler := wallets.NewWalletsHandler(new(mocks.ApiStore))
		req := httptest.NewRequest(http.MethodPost, "/wallets", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		handler.CreateWallet(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		mockStore.On("CreateWallet", mock.Anything, "user-a").Return(nil, storage.ErrWalletExists)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodPost, "/wallets", strings.NewReader(`{"user_id":"user-a"}`))
		rec := httptest.NewRecorder()
		handler.CreateWallet(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetWalletByUserId(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		wallet := &models.Wallet{UserId: "user-a", Balance: 100, LockedBalance: 30, Version: 3, Active: true}
		mockStore.On("GetWallet", mock.Anything, "user-a").Return(wallet, nil)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a", nil)
		rec := httptest.NewRecorder()
		handler.GetWalletByUserId(rec, req, "user-a")

		assert.Equal(t, http.StatusOK, rec.Code)
		got := decode[api.Wallet](t, rec)
		assert.Equal(t, int64(100), got.Balance)
		assert.Equal(t, int64(70), got.AvailableBalance)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		mockStore.On("GetWallet", mock.Anything, "user-b").Return(nil, storage.ErrWalletNotFound)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-b", nil)
		rec := httptest.NewRecorder()
		handler.GetWalletByUserId(rec, req, "user-b")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		mockStore.On("GetWallet", mock.Anything, "user-a").Return(&models.Wallet{UserId: "user-a", Active: true}, nil)
		txs := []models.Transaction{{UserId: "user-a", Type: models.TypeDeposit, Amount: 100, Status: models.COMPLETED}}
		mockStore.On("ListTransactionsByUser", mock.Anything, "user-a", mock.AnythingOfType("storage.TransactionQuery")).Return(txs, "next-cursor", nil)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a/transactions?limit=10", nil)
		rec := httptest.NewRecorder()
		handler.ListTransactions(rec, req, "user-a")

		assert.Equal(t, http.StatusOK, rec.Code)
		page := decode[api.TransactionPage](t, rec)
		assert.Len(t, page.Transactions, 1)
		assert.Equal(t, "next-cursor", page.NextCursor)
	})

	t.Run("Bad Limit", func(t *testing.T) {
		handler := wallets.NewWalletsHandler(new(mocks.ApiStore))
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a/transactions?limit=-5", nil)
		rec := httptest.NewRecorder()
		handler.ListTransactions(rec, req, "user-a")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		handler := wallets.NewWalletsHandler(new(mocks.ApiStore))
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a/transactions?type=jackpot", nil)
		rec := httptest.NewRecorder()
		handler.ListTransactions(rec, req, "user-a")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown Wallet", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		mockStore.On("GetWallet", mock.Anything, "user-z").Return(nil, storage.ErrWalletNotFound)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-z/transactions", nil)
		rec := httptest.NewRecorder()
		handler.ListTransactions(rec, req, "user-z")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockStore.AssertNotCalled(t, "ListTransactionsByUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetStats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStore := new(mocks.ApiStore)
		mockStore.On("GetWallet", mock.Anything, "user-a").Return(&models.Wallet{UserId: "user-a", Balance: 60, Active: true}, nil)
		now := time.Now()
		mockStore.On("ListSettledByUser", mock.Anything, "user-a").Return([]models.Transaction{
			{Type: models.TypeDeposit, Amount: 100, Status: models.COMPLETED, CreatedAt: now},
			{Type: models.TypePurchase, Amount: 40, Status: models.COMPLETED, CreatedAt: now},
			// Outside the 30 day window, must not be counted.
			{Type: models.TypeDeposit, Amount: 500, Status: models.COMPLETED, CreatedAt: now.AddDate(0, 0, -45)},
		}, nil)

		handler := wallets.NewWalletsHandler(mockStore)
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a/stats", nil)
		rec := httptest.NewRecorder()
		handler.GetStats(rec, req, "user-a")

		assert.Equal(t, http.StatusOK, rec.Code)
		stats := decode[api.WalletStats](t, rec)
		assert.Equal(t, 30, stats.PeriodDays)
		assert.Equal(t, int64(100), stats.TotalIncome)
		assert.Equal(t, int64(40), stats.TotalExpense)
		assert.Equal(t, int64(60), stats.NetChange)
		assert.Equal(t, int64(1), stats.TransactionCounts["deposit"])
		assert.Equal(t, int64(1), stats.TransactionCounts["purchase"])
	})

	t.Run("Bad Days", func(t *testing.T) {
		handler := wallets.NewWalletsHandler(new(mocks.ApiStore))
		req := httptest.NewRequest(http.MethodGet, "/wallets/user-a/stats?days=zero", nil)
		rec := httptest.NewRecorder()
		handler.GetStats(rec, req, "user-a")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
