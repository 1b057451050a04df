package storage

import (
	"context"

	"github.com/frmai/coin-ledger/pkg/models"
)

// WalletStore defines the interface for managing wallet rows.
type WalletStore interface {
	// GetWallet retrieves a user's wallet by their user ID.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// CreateWallet creates a zero-balance wallet for a user.
	CreateWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// ListWallets retrieves all wallets.
	ListWallets(ctx context.Context) ([]models.Wallet, error)

	// DeactivateWallet soft-deletes a wallet. Transaction history is
	// retained; further mutations are rejected.
	DeactivateWallet(ctx context.Context, userID string) error
}
