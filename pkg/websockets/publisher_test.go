package websockets

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/stretchr/testify/assert"
)

// fakeConnectionStore maps users to their registered connection IDs.
type fakeConnectionStore struct {
	byUser  map[string][]string
	removed []string
}

func (f *fakeConnectionStore) ListConnectionsByUser(ctx context.Context, userID string) ([]string, error) {
	return f.byUser[userID], nil
}

func (f *fakeConnectionStore) AddConnection(ctx context.Context, connectionID, userID string) error {
	f.byUser[userID] = append(f.byUser[userID], connectionID)
	return nil
}

func (f *fakeConnectionStore) RemoveConnection(ctx context.Context, connectionID string) error {
	f.removed = append(f.removed, connectionID)
	return nil
}

// fakeManagementClient records posts and can simulate gone connections.
type fakeManagementClient struct {
	posted []string
	gone   map[string]bool
}

func (f *fakeManagementClient) PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	if f.gone[*params.ConnectionId] {
		return nil, &apigwtypes.GoneException{}
	}
	f.posted = append(f.posted, *params.ConnectionId)
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func TestPublish(t *testing.T) {
	message := Message{
		UserID: "user-a",
		Type:   MessageTypeWalletUpdate,
		Payload: WalletUpdatePayload{
			UserID:     "user-a",
			Change:     -50,
			NewBalance: 150,
		},
	}

	t.Run("Delivers Only To The Target User", func(t *testing.T) {
		store := &fakeConnectionStore{byUser: map[string][]string{
			"user-a": {"conn-a1", "conn-a2"},
			"user-b": {"conn-b1"},
		}}
		client := &fakeManagementClient{}
		publisher := &DefaultPublisher{store: store, connManager: store, apiGwClient: client}

		err := publisher.Publish(context.Background(), message)

		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"conn-a1", "conn-a2"}, client.posted)
		assert.NotContains(t, client.posted, "conn-b1")
	})

	t.Run("Missing Target User Is Rejected", func(t *testing.T) {
		store := &fakeConnectionStore{byUser: map[string][]string{}}
		publisher := &DefaultPublisher{store: store, connManager: store, apiGwClient: &fakeManagementClient{}}

		err := publisher.Publish(context.Background(), Message{Type: MessageTypeWalletUpdate})

		assert.Error(t, err)
	})

	t.Run("Stale Connections Are Removed", func(t *testing.T) {
		store := &fakeConnectionStore{byUser: map[string][]string{
			"user-a": {"conn-stale", "conn-live"},
		}}
		client := &fakeManagementClient{gone: map[string]bool{"conn-stale": true}}
		publisher := &DefaultPublisher{store: store, connManager: store, apiGwClient: client}

		err := publisher.Publish(context.Background(), message)

		assert.NoError(t, err)
		assert.Equal(t, []string{"conn-live"}, client.posted)
		assert.Equal(t, []string{"conn-stale"}, store.removed)
	})
}
