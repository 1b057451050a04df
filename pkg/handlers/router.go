// Package handlers wires the HTTP surface onto the domain services.
package handlers

import (
	"log/slog"
	"net/http"

	adminsvc "github.com/frmai/coin-ledger/pkg/admin"
	adminhandler "github.com/frmai/coin-ledger/pkg/handlers/admin"
	holdshandler "github.com/frmai/coin-ledger/pkg/handlers/holds"
	paymentshandler "github.com/frmai/coin-ledger/pkg/handlers/payments"
	purchaseshandler "github.com/frmai/coin-ledger/pkg/handlers/purchases"
	transfershandler "github.com/frmai/coin-ledger/pkg/handlers/transfers"
	walletshandler "github.com/frmai/coin-ledger/pkg/handlers/wallets"
	wshandler "github.com/frmai/coin-ledger/pkg/handlers/websockets"
	"github.com/frmai/coin-ledger/pkg/holds"
	custommiddleware "github.com/frmai/coin-ledger/pkg/middleware"
	"github.com/frmai/coin-ledger/pkg/payments"
	"github.com/frmai/coin-ledger/pkg/purchases"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/frmai/coin-ledger/pkg/transfer"
	"github.com/frmai/coin-ledger/pkg/websockets"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Config collects the dependencies the router needs.
type Config struct {
	Store     storage.Storage
	Catalog   storage.PackageCatalog
	Publisher websockets.Publisher
	AdminKey  string
	Logger    *slog.Logger

	// EnableWebsockets mounts the live-update endpoint. Requires the
	// connections table to be configured.
	EnableWebsockets bool
}

// NewRouter builds the service's chi router with all routes mounted.
func NewRouter(cfg Config) chi.Router {
	transferEngine := transfer.NewEngine(cfg.Store, cfg.Publisher)
	holdManager := holds.NewManager(cfg.Store)
	purchaseProcessor := purchases.NewProcessor(cfg.Store, cfg.Catalog)
	paymentIngestor := payments.NewIngestor(cfg.Store)
	adjuster := adminsvc.NewAdjuster(cfg.Store)

	walletsH := walletshandler.NewWalletsHandler(cfg.Store)
	transfersH := transfershandler.NewTransfersHandler(transferEngine)
	purchasesH := purchaseshandler.NewPurchasesHandler(purchaseProcessor)
	paymentsH := paymentshandler.NewPaymentsHandler(paymentIngestor)
	holdsH := holdshandler.NewHoldsHandler(holdManager)
	adminH := adminhandler.NewAdminHandler(adjuster, cfg.Store)
	wsH := wshandler.NewHandler(cfg.Store)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(custommiddleware.NewStructuredLogger(cfg.Logger))
	}

	r.Route("/wallets", func(r chi.Router) {
		r.Post("/", walletsH.CreateWallet)
		r.Get("/", walletsH.ListWallets)
		r.Get("/{userId}", func(w http.ResponseWriter, r *http.Request) {
			walletsH.GetWalletByUserId(w, r, chi.URLParam(r, "userId"))
		})
		r.Get("/{userId}/transactions", func(w http.ResponseWriter, r *http.Request) {
			walletsH.ListTransactions(w, r, chi.URLParam(r, "userId"))
		})
		r.Get("/{userId}/stats", func(w http.ResponseWriter, r *http.Request) {
			walletsH.GetStats(w, r, chi.URLParam(r, "userId"))
		})
	})

	r.Post("/transfers", transfersH.CreateTransfer)
	r.Post("/purchases", purchasesH.CreatePurchase)
	r.Post("/payments/confirmations", paymentsH.ConfirmPayment)

	r.Route("/holds", func(r chi.Router) {
		r.Post("/", holdsH.PlaceHold)
		r.Post("/{holdId}/release", withUUID("holdId", holdsH.ReleaseHold))
		r.Post("/{holdId}/capture", withUUID("holdId", holdsH.CaptureHold))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(custommiddleware.AdminAuth(cfg.AdminKey))
		r.Post("/wallets/{userId}/add-coins", func(w http.ResponseWriter, r *http.Request) {
			adminH.AddCoins(w, r, chi.URLParam(r, "userId"))
		})
		r.Get("/wallets/{userId}/audit", func(w http.ResponseWriter, r *http.Request) {
			adminH.ListAuditEntries(w, r, chi.URLParam(r, "userId"))
		})
		r.Post("/transactions/{transactionId}/reverse", withUUID("transactionId", adminH.ReverseTransaction))
		r.Delete("/wallets/{userId}", func(w http.ResponseWriter, r *http.Request) {
			adminH.DeactivateWallet(w, r, chi.URLParam(r, "userId"))
		})
	})

	if cfg.EnableWebsockets {
		r.Handle("/ws", wsH)
	}

	return r
}

// withUUID parses a UUID path parameter before invoking the handler.
func withUUID(param string, handler func(http.ResponseWriter, *http.Request, uuid.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, param))
		if err != nil {
			http.Error(w, param+" must be a valid UUID", http.StatusBadRequest)
			return
		}
		handler(w, r, id)
	}
}
