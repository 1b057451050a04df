package auth

import "context"

type contextKey struct{}

// WithAdmin marks the context as carrying the admin capability for the
// given operator id. Row-level security from the original schema becomes
// this explicit application-level check.
func WithAdmin(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, contextKey{}, adminID)
}

// AdminFrom returns the operator id when the context carries the admin
// capability.
func AdminFrom(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(contextKey{}).(string)
	return adminID, ok && adminID != ""
}
