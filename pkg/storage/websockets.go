package storage

import "context"

// WebSocketManager defines the interface for storing and retrieving
// WebSocket connection IDs. Connections are keyed by the authenticated
// user so wallet updates are only ever delivered to their owner.
type WebSocketManager interface {
	AddConnection(ctx context.Context, connectionID, userID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	ListConnectionsByUser(ctx context.Context, userID string) ([]string, error)
}
