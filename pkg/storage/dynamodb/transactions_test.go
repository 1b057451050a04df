package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/frmai/coin-ledger/pkg/storage/dynamodb/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

func txItem(t *testing.T, tx *models.Transaction) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(tx)
	assert.NoError(t, err)
	return av
}

func TestGetTransaction(t *testing.T) {
	txID := openapi_types.UUID(uuid.New())
	tx := &models.Transaction{Id: txID, UserId: "user-a", Type: models.TypeDeposit, Amount: 100, Status: models.COMPLETED}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: txItem(t, tx)}, nil)

		store := newTestStore(mockClient)
		retrieved, err := store.GetTransaction(context.Background(), txID)

		assert.NoError(t, err)
		assert.Equal(t, txID, retrieved.Id)
		assert.Equal(t, models.TypeDeposit, retrieved.Type)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		store := newTestStore(mockClient)
		_, err := store.GetTransaction(context.Background(), txID)

		assert.ErrorIs(t, err, storage.ErrTransactionNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestListTransactionsByUser(t *testing.T) {
	txs := []models.Transaction{
		{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeDeposit, Amount: 100, Status: models.COMPLETED},
		{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypePurchase, Amount: 40, Status: models.COMPLETED},
	}

	t.Run("Single Page", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		items := []map[string]types.AttributeValue{txItem(t, &txs[0]), txItem(t, &txs[1])}
		mockClient.On("Query", mock.Anything, mock.AnythingOfType("*dynamodb.QueryInput")).Return(&dynamodb.QueryOutput{Items: items}, nil)

		store := newTestStore(mockClient)
		page, next, err := store.ListTransactionsByUser(context.Background(), "user-a", storage.TransactionQuery{})

		assert.NoError(t, err)
		assert.Len(t, page, 2)
		assert.Empty(t, next)
		mockClient.AssertExpectations(t)
	})

	t.Run("Returns Continuation Cursor", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		lastKey := map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberS{Value: txs[0].Id.String()},
			"user_id":    &types.AttributeValueMemberS{Value: "user-a"},
			"created_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txItem(t, &txs[0])}, LastEvaluatedKey: lastKey}, nil)

		store := newTestStore(mockClient)
		page, next, err := store.ListTransactionsByUser(context.Background(), "user-a", storage.TransactionQuery{Limit: 1})

		assert.NoError(t, err)
		assert.Len(t, page, 1)
		assert.NotEmpty(t, next)
		mockClient.AssertExpectations(t)
	})

	t.Run("Rejects Bad Cursor", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := newTestStore(mockClient)

		_, _, err := store.ListTransactionsByUser(context.Background(), "user-a", storage.TransactionQuery{Cursor: "!!not-base64!!"})

		assert.Error(t, err)
		mockClient.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("Type Filter Is Applied", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		var captured *dynamodb.QueryInput
		mockClient.On("Query", mock.Anything, mock.AnythingOfType("*dynamodb.QueryInput")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*dynamodb.QueryInput)
			}).
			Return(&dynamodb.QueryOutput{}, nil)

		store := newTestStore(mockClient)
		_, _, err := store.ListTransactionsByUser(context.Background(), "user-a", storage.TransactionQuery{Type: models.TypePurchase})

		assert.NoError(t, err)
		assert.NotNil(t, captured.FilterExpression)
		assert.Equal(t, "purchase", captured.ExpressionAttributeValues[":txType"].(*types.AttributeValueMemberS).Value)
		mockClient.AssertExpectations(t)
	})
}

func TestListSettledByUser(t *testing.T) {
	t.Run("Includes Reversed Rows", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		reversed := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypePurchase, Amount: 30000, Status: models.REVERSED}
		refund := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeRefund, Amount: 30000, Status: models.COMPLETED}

		var captured *dynamodb.QueryInput
		mockClient.On("Query", mock.Anything, mock.AnythingOfType("*dynamodb.QueryInput")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*dynamodb.QueryInput)
			}).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txItem(t, reversed), txItem(t, refund)}}, nil)

		store := newTestStore(mockClient)
		txs, err := store.ListSettledByUser(context.Background(), "user-a")

		assert.NoError(t, err)
		assert.Len(t, txs, 2)
		assert.Contains(t, *captured.FilterExpression, ":reversed")
		assert.Equal(t, "reversed", captured.ExpressionAttributeValues[":reversed"].(*types.AttributeValueMemberS).Value)
		mockClient.AssertExpectations(t)
	})

	t.Run("Follows Pagination", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		first := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeDeposit, Amount: 100, Status: models.COMPLETED}
		second := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Type: models.TypeBonus, Amount: 20, Status: models.COMPLETED}
		lastKey := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: first.Id.String()}}

		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txItem(t, first)}, LastEvaluatedKey: lastKey}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txItem(t, second)}}, nil).Once()

		store := newTestStore(mockClient)
		txs, err := store.ListSettledByUser(context.Background(), "user-a")

		assert.NoError(t, err)
		assert.Len(t, txs, 2)
		mockClient.AssertExpectations(t)
	})
}

func TestFindCompletedByIdempotencyKey(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		tx := &models.Transaction{Id: openapi_types.UUID(uuid.New()), UserId: "user-a", Status: models.COMPLETED, IdempotencyKey: "key-1"}
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{txItem(t, tx)}}, nil)

		store := newTestStore(mockClient)
		found, err := store.FindCompletedByIdempotencyKey(context.Background(), "key-1")

		assert.NoError(t, err)
		assert.NotNil(t, found)
		mockClient.AssertExpectations(t)
	})

	t.Run("Fresh Key Returns Nil", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		store := newTestStore(mockClient)
		found, err := store.FindCompletedByIdempotencyKey(context.Background(), "key-1")

		assert.NoError(t, err)
		assert.Nil(t, found)
		mockClient.AssertExpectations(t)
	})
}

func TestMarkTransactionFailed(t *testing.T) {
	txID := openapi_types.UUID(uuid.New())

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{}, nil)

		store := newTestStore(mockClient)
		assert.NoError(t, store.MarkTransactionFailed(context.Background(), txID))
		mockClient.AssertExpectations(t)
	})

	t.Run("No Longer Pending Is A NoOp", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := newTestStore(mockClient)
		assert.NoError(t, store.MarkTransactionFailed(context.Background(), txID))
		mockClient.AssertExpectations(t)
	})
}

func TestMarkTransactionReversed(t *testing.T) {
	txID := openapi_types.UUID(uuid.New())

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{}, nil)

		store := newTestStore(mockClient)
		assert.NoError(t, store.MarkTransactionReversed(context.Background(), txID))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Completed", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := newTestStore(mockClient)
		err := store.MarkTransactionReversed(context.Background(), txID)

		assert.ErrorIs(t, err, storage.ErrNotReversible)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := newTestStore(mockClient)
		err := store.MarkTransactionReversed(context.Background(), txID)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotReversible)
		mockClient.AssertExpectations(t)
	})
}
