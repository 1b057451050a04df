package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frmai/coin-ledger/pkg/models"
)

const auditByUserGSI = "target_user_id-created_at-index"

// AppendAuditEntry stores an audit record for a privileged action.
func (s *Store) AppendAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	entryAV, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.AuditTableName),
		Item:                entryAV,
		ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put audit entry: %w", err)
	}

	return nil
}

// ListAuditEntries retrieves the most recent audit entries for a wallet.
func (s *Store) ListAuditEntries(ctx context.Context, targetUserID string, limit int32) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.AuditTableName),
		IndexName:              aws.String(auditByUserGSI),
		KeyConditionExpression: aws.String("target_user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: targetUserID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            &limit,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	var entries []models.AuditEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit entries: %w", err)
	}

	return entries, nil
}
