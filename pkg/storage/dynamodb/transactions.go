package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	userTransactionsGSI = "user_id-created_at-index"
	idempotencyKeyGSI   = "idempotency_key-index"
	externalTxnGSI      = "external_txn_id-index"
	relatedIdGSI        = "related_id-index"
	pendingStatusGSI    = "status-created_at-index"

	defaultPageLimit = 50
)

// GetTransaction retrieves a transaction from DynamoDB by its ID.
func (s *Store) GetTransaction(ctx context.Context, txID openapi_types.UUID) (*models.Transaction, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": txID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrTransactionNotFound, txID.String())
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	return &tx, nil
}

// pageCursor carries the DynamoDB continuation key across requests as an
// opaque token.
type pageCursor struct {
	Id        string `json:"id"`
	UserId    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	if key == nil {
		return "", nil
	}
	var c pageCursor
	if v, ok := key["id"].(*types.AttributeValueMemberS); ok {
		c.Id = v.Value
	}
	if v, ok := key["user_id"].(*types.AttributeValueMemberS); ok {
		c.UserId = v.Value
	}
	if v, ok := key["created_at"].(*types.AttributeValueMemberS); ok {
		c.CreatedAt = v.Value
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal page cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid page cursor: %w", err)
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("invalid page cursor: %w", err)
	}
	return map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: c.Id},
		"user_id":    &types.AttributeValueMemberS{Value: c.UserId},
		"created_at": &types.AttributeValueMemberS{Value: c.CreatedAt},
	}, nil
}

// ListTransactionsByUser returns one page of a user's history, newest first.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string, q storage.TransactionQuery) ([]models.Transaction, string, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(userTransactionsGSI),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            &limit,
	}

	if q.Type != "" {
		input.FilterExpression = aws.String("transaction_type = :txType")
		input.ExpressionAttributeValues[":txType"] = &types.AttributeValueMemberS{Value: string(q.Type)}
	}

	startKey, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, "", err
	}
	input.ExclusiveStartKey = startKey

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query transactions by user ID: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	next, err := encodeCursor(result.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return transactions, next, nil
}

// ListSettledByUser returns every transaction that mutated the user's
// balances, following pagination internally. Reversed rows are included:
// their effect on the balance stands, undone by a separate compensating
// row. Reconciliation and stats read the log through this without any
// locking.
func (s *Store) ListSettledByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(userTransactionsGSI),
		KeyConditionExpression: aws.String("user_id = :userID"),
		FilterExpression:       aws.String("#status IN (:completed, :reversed)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID":    &types.AttributeValueMemberS{Value: userID},
			":completed": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
			":reversed":  &types.AttributeValueMemberS{Value: string(models.REVERSED)},
		},
	}

	var transactions []models.Transaction
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query settled transactions: %w", err)
		}

		var page []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		transactions = append(transactions, page...)

		if result.LastEvaluatedKey == nil {
			return transactions, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// FindCompletedByIdempotencyKey returns the completed transaction carrying
// the idempotency key, or nil when no such row exists.
func (s *Store) FindCompletedByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(idempotencyKeyGSI),
		KeyConditionExpression: aws.String("idempotency_key = :key"),
		FilterExpression:       aws.String("#status = :completed"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key":       &types.AttributeValueMemberS{Value: key},
			":completed": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query by idempotency key: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Items[0], &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// FindDepositByExternalId returns the completed deposit credited for the
// external settlement id, or nil when none exists.
func (s *Store) FindDepositByExternalId(ctx context.Context, externalTxnID string) (*models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(externalTxnGSI),
		KeyConditionExpression: aws.String("external_txn_id = :external"),
		FilterExpression:       aws.String("transaction_type = :deposit AND #status = :completed"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":external":  &types.AttributeValueMemberS{Value: externalTxnID},
			":deposit":   &types.AttributeValueMemberS{Value: string(models.TypeDeposit)},
			":completed": &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query by external transaction id: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Items[0], &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// ListByRelatedId returns all rows correlated under one related id.
func (s *Store) ListByRelatedId(ctx context.Context, relatedType, relatedID string) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(relatedIdGSI),
		KeyConditionExpression: aws.String("related_id = :relatedID"),
		FilterExpression:       aws.String("related_type = :relatedType"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":relatedID":   &types.AttributeValueMemberS{Value: relatedID},
			":relatedType": &types.AttributeValueMemberS{Value: relatedType},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query by related id: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}
	return transactions, nil
}

// ListStalePending retrieves transactions stuck in the pending state for
// longer than maxAge.
func (s *Store) ListStalePending(ctx context.Context, maxAge time.Duration) ([]models.Transaction, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(pendingStatusGSI),
		KeyConditionExpression: aws.String("#status = :status"),
		FilterExpression:       aws.String("created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PENDING)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for stale pending transactions: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stale pending transactions: %w", err)
	}

	return transactions, nil
}

// MarkTransactionFailed moves a pending row to failed. Rows that have since
// completed are left untouched.
func (s *Store) MarkTransactionFailed(ctx context.Context, txID openapi_types.UUID) error {
	err := s.updateStatus(ctx, txID, models.PENDING, models.FAILED)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// No longer pending; nothing to sweep.
			return nil
		}
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	return nil
}

// MarkTransactionReversed moves a completed row to reversed. The row's
// amounts are never edited; the compensating row carries the correction.
func (s *Store) MarkTransactionReversed(ctx context.Context, txID openapi_types.UUID) error {
	err := s.updateStatus(ctx, txID, models.COMPLETED, models.REVERSED)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("%w: %s", storage.ErrNotReversible, txID.String())
		}
		return fmt.Errorf("failed to mark transaction reversed: %w", err)
	}
	return nil
}

func (s *Store) updateStatus(ctx context.Context, txID openapi_types.UUID, from, to models.TransactionStatus) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: txID.String()},
		},
		UpdateExpression:    aws.String("SET #status = :to, processed_at = :now"),
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   &types.AttributeValueMemberS{Value: string(to)},
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	return err
}
