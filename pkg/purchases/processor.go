package purchases

import (
	"context"
	"fmt"

	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
)

// Processor debits wallets against catalog package prices, exactly once per
// idempotency key.
type Processor struct {
	Store   storage.ApiStore
	Catalog storage.PackageCatalog
}

// NewProcessor creates a new Processor.
func NewProcessor(store storage.ApiStore, catalog storage.PackageCatalog) *Processor {
	return &Processor{Store: store, Catalog: catalog}
}

// Purchase debits the package price from the user's wallet. A retried
// request with the same idempotency key returns the original transaction
// without debiting again. The catalog read happens before the atomic apply,
// never under the wallet lock.
func (p *Processor) Purchase(ctx context.Context, userID, packageID, idempotencyKey string) (*models.Transaction, bool, error) {
	pkg, err := p.Catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, false, err
	}

	if idempotencyKey != "" {
		prior, err := p.Store.FindCompletedByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if prior != nil {
			if prior.Type != models.TypePurchase || prior.UserId != userID ||
				prior.Metadata == nil || prior.Metadata.Purchase == nil ||
				prior.Metadata.Purchase.PackageId != packageID {
				return nil, false, fmt.Errorf("%w: key %q", storage.ErrDuplicateIdempotencyKey, idempotencyKey)
			}
			return prior, true, nil
		}
	}

	tx, err := p.Store.Apply(ctx, storage.Operation{
		UserId:      userID,
		Type:        models.TypePurchase,
		Amount:      pkg.Price,
		Description: fmt.Sprintf("Purchase of package %s", pkg.Name),
		RelatedType: "package",
		RelatedId:   packageID,
		Metadata: &models.Metadata{Purchase: &models.PurchaseMetadata{
			PackageId:      packageID,
			Price:          pkg.Price,
			IdempotencyKey: idempotencyKey,
		}},
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, false, err
	}
	return tx, false, nil
}
