package wallets

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/frmai/coin-ledger/pkg/api"
	"github.com/frmai/coin-ledger/pkg/handlers/httperr"
	"github.com/frmai/coin-ledger/pkg/mapping"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
)

const defaultStatsDays = 30

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Store storage.ApiStore
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(store storage.ApiStore) *WalletsHandler {
	return &WalletsHandler{Store: store}
}

// CreateWallet handles the logic for creating a new wallet.
func (h *WalletsHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var newWallet api.NewWallet
	if err := json.NewDecoder(r.Body).Decode(&newWallet); err != nil {
		httperr.BadRequest(w, err)
		return
	}
	if newWallet.UserId == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	createdWallet, err := h.Store.CreateWallet(r.Context(), newWallet.UserId)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, mapping.ToApiWallet(createdWallet))
}

// GetWalletByUserId handles the logic for retrieving a user's wallet.
func (h *WalletsHandler) GetWalletByUserId(w http.ResponseWriter, r *http.Request, userId string) {
	domainWallet, err := h.Store.GetWallet(r.Context(), userId)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, mapping.ToApiWallet(domainWallet))
}

// ListTransactions returns one page of a wallet's history, newest first.
// Supports limit, cursor and type query parameters.
func (h *WalletsHandler) ListTransactions(w http.ResponseWriter, r *http.Request, userId string) {
	q := storage.TransactionQuery{
		Cursor: r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || limit <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		q.Limit = int32(limit)
	}

	if raw := r.URL.Query().Get("type"); raw != "" {
		txType := models.TransactionType(raw)
		if !txType.Valid() {
			http.Error(w, "unknown transaction type", http.StatusBadRequest)
			return
		}
		q.Type = txType
	}

	// The wallet must exist; an empty history on a real wallet is a 200.
	if _, err := h.Store.GetWallet(r.Context(), userId); err != nil {
		httperr.Write(w, err)
		return
	}

	txs, nextCursor, err := h.Store.ListTransactionsByUser(r.Context(), userId, q)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	httperr.JSON(w, http.StatusOK, api.TransactionPage{
		Transactions: mapping.ToApiTransactions(txs),
		NextCursor:   nextCursor,
	})
}

// GetStats summarizes a wallet's activity over a trailing window of days.
func (h *WalletsHandler) GetStats(w http.ResponseWriter, r *http.Request, userId string) {
	days := defaultStatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	wallet, err := h.Store.GetWallet(r.Context(), userId)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	txs, err := h.Store.ListSettledByUser(r.Context(), userId)
	if err != nil {
		httperr.Write(w, err)
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	stats := api.WalletStats{
		UserId:            userId,
		PeriodDays:        days,
		TransactionCounts: make(map[string]int64),
		CurrentBalance:    wallet.Balance,
		LockedBalance:     wallet.LockedBalance,
	}

	for _, tx := range txs {
		if tx.CreatedAt.Before(cutoff) {
			continue
		}
		stats.TransactionCounts[string(tx.Type)]++
		delta := models.BalanceDelta(tx.Type, tx.Amount)
		switch {
		case delta > 0:
			stats.TotalIncome += delta
		case delta < 0:
			stats.TotalExpense += -delta
		}
	}
	stats.NetChange = stats.TotalIncome - stats.TotalExpense

	httperr.JSON(w, http.StatusOK, stats)
}

// ListWallets handles the logic for retrieving all wallets.
func (h *WalletsHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	domainWallets, err := h.Store.ListWallets(r.Context())
	if err != nil {
		httperr.Write(w, err)
		return
	}

	apiWallets := make([]*api.Wallet, len(domainWallets))
	for i := range domainWallets {
		apiWallets[i] = mapping.ToApiWallet(&domainWallets[i])
	}

	httperr.JSON(w, http.StatusOK, apiWallets)
}
