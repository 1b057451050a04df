package storage

import (
	"context"

	"github.com/frmai/coin-ledger/pkg/models"
)

// PackageCatalog is the external catalog collaborator consulted for package
// prices. Reads happen before the atomic apply, never under the wallet lock.
type PackageCatalog interface {
	GetPackage(ctx context.Context, packageID string) (*models.Package, error)
}
