package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
)

// GetPackage retrieves an active package from the catalog table.
func (s *Store) GetPackage(ctx context.Context, packageID string) (*models.Package, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"package_id": packageID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal package ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.PackagesTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCatalogUnavailable, err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrPackageNotFound, packageID)
	}

	var pkg models.Package
	if err := attributevalue.UnmarshalMap(result.Item, &pkg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal package: %w", err)
	}
	if !pkg.Active {
		return nil, fmt.Errorf("%w: %s is inactive", storage.ErrPackageNotFound, packageID)
	}

	return &pkg, nil
}
