package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/frmai/coin-ledger/pkg/models"
	"github.com/frmai/coin-ledger/pkg/storage"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	// applyAttempts bounds the retry budget when a concurrent writer wins
	// the per-wallet version race.
	applyAttempts = 3

	applyRetryDelay = 25 * time.Millisecond
)

// Apply applies a single operation. See storage.Ledger.
func (s *Store) Apply(ctx context.Context, op storage.Operation) (*models.Transaction, error) {
	txs, err := s.ApplyMany(ctx, []storage.Operation{op})
	if err != nil {
		return nil, err
	}
	return &txs[0], nil
}

// ApplyMany applies a batch of operations as one atomic unit. Wallets are
// processed in ascending user id order; operations on the same wallet fold
// into a single guarded update with chained balance snapshots. Either every
// wallet update and transaction row commits, or none do.
func (s *Store) ApplyMany(ctx context.Context, ops []storage.Operation) ([]models.Transaction, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("apply requires at least one operation")
	}
	for _, op := range ops {
		if err := validateOperation(op); err != nil {
			return nil, err
		}
	}

	// Fixed, globally-consistent lock order across concurrently racing
	// multi-wallet applies. Stable sort keeps per-wallet input order.
	sorted := make([]storage.Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UserId < sorted[j].UserId })

	var lastErr error
	for attempt := 0; attempt < applyAttempts; attempt++ {
		txs, input, err := s.buildApply(ctx, sorted)
		if err != nil {
			return nil, err
		}

		if _, err := s.Client.TransactWriteItems(ctx, input); err == nil {
			return txs, nil
		} else if !isConditionalCancellation(err) {
			return nil, fmt.Errorf("failed to execute apply transaction: %w", err)
		} else {
			lastErr = err
		}

		// A concurrent writer bumped a wallet version between our read and
		// write. Re-read and retry within the budget.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(applyRetryDelay):
		}
	}

	return nil, fmt.Errorf("%w: %v", storage.ErrRetryExhausted, lastErr)
}

// buildApply reads the affected wallets, validates post-states and builds
// the transact write. Validation failures abort before anything is written.
func (s *Store) buildApply(ctx context.Context, ops []storage.Operation) ([]models.Transaction, *dynamodb.TransactWriteItemsInput, error) {
	now := time.Now()

	type walletState struct {
		wallet  *models.Wallet
		balance int64
		locked  int64
		earned  int64
		spent   int64
	}

	states := make(map[string]*walletState)
	var order []string

	txs := make([]models.Transaction, 0, len(ops))
	for _, op := range ops {
		st, ok := states[op.UserId]
		if !ok {
			w, err := s.GetWallet(ctx, op.UserId)
			if err != nil {
				return nil, nil, err
			}
			if !w.Active {
				return nil, nil, fmt.Errorf("%w: user %s", storage.ErrWalletInactive, op.UserId)
			}
			st = &walletState{wallet: w, balance: w.Balance, locked: w.LockedBalance, earned: w.TotalEarned, spent: w.TotalSpent}
			states[op.UserId] = st
			order = append(order, op.UserId)
		}

		delta := models.BalanceDelta(op.Type, op.Amount)
		lockedDelta := models.LockedDelta(op.Type, op.Amount)
		newBalance := st.balance + delta
		newLocked := st.locked + lockedDelta
		if newBalance < 0 || newLocked < 0 || newLocked > newBalance {
			return nil, nil, fmt.Errorf("%w: user %s", storage.ErrInsufficientFunds, op.UserId)
		}

		tx := models.Transaction{
			Id:             openapi_types.UUID(uuid.New()),
			UserId:         op.UserId,
			Type:           op.Type,
			Amount:         op.Amount,
			BalanceBefore:  st.balance,
			BalanceAfter:   newBalance,
			LockedBefore:   st.locked,
			LockedAfter:    newLocked,
			Description:    op.Description,
			RelatedType:    op.RelatedType,
			RelatedId:      op.RelatedId,
			Metadata:       op.Metadata,
			Status:         models.COMPLETED,
			CreatedAt:      now,
			ProcessedAt:    &now,
			IdempotencyKey: op.IdempotencyKey,
			ExternalTxnId:  op.ExternalTxnId,
		}
		txs = append(txs, tx)

		st.balance = newBalance
		st.locked = newLocked
		if delta > 0 {
			st.earned += delta
		} else if delta < 0 {
			st.spent += -delta
		}
	}

	items := make([]types.TransactWriteItem, 0, len(order)+len(txs))
	for _, userID := range order {
		st := states[userID]
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.WalletsTableName),
				Key: map[string]types.AttributeValue{
					"user_id": &types.AttributeValueMemberS{Value: userID},
				},
				UpdateExpression:    aws.String("SET balance = :balance, locked_balance = :locked, total_earned = :earned, total_spent = :spent, updated_at = :now, version = version + :inc"),
				ConditionExpression: aws.String("version = :version AND active = :active"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":balance": numAV(st.balance),
					":locked":  numAV(st.locked),
					":earned":  numAV(st.earned),
					":spent":   numAV(st.spent),
					":now":     &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339Nano)},
					":version": numAV(st.wallet.Version),
					":active":  &types.AttributeValueMemberBOOL{Value: true},
					":inc":     numAV(1),
				},
			},
		})
	}

	for i := range txs {
		txAV, err := attributevalue.MarshalMap(&txs[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal transaction: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.TransactionsTableName),
				Item:                txAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		})
	}

	return txs, &dynamodb.TransactWriteItemsInput{TransactItems: items}, nil
}

func validateOperation(op storage.Operation) error {
	if !op.Type.Valid() {
		return fmt.Errorf("unsupported transaction type %q", op.Type)
	}
	if op.Type == models.TypeAdminAdjustment {
		if op.Amount == 0 {
			return fmt.Errorf("%w: adjustment amount must be non-zero", storage.ErrInvalidAmount)
		}
	} else if op.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", storage.ErrInvalidAmount)
	}
	if err := op.Metadata.Validate(op.Type); err != nil {
		return err
	}
	return nil
}

// isConditionalCancellation reports whether the transact write was cancelled
// by a conditional check, i.e. a version race with a concurrent apply.
func isConditionalCancellation(err error) bool {
	var txc *types.TransactionCanceledException
	if errors.As(err, &txc) {
		for _, reason := range txc.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

func numAV(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", n)}
}
