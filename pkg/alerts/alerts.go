package alerts

import (
	"context"
	"time"
)

// AlertType classifies a data-integrity alert.
type AlertType string

const (
	// AlertBalanceDrift means a wallet's stored balance disagrees with the
	// signed sum of its completed transactions.
	AlertBalanceDrift AlertType = "balance_drift"
)

// Alert is a data-integrity finding destined for operator review. Findings
// are never auto-corrected.
type Alert struct {
	Type            AlertType `json:"type"`
	UserId          string    `json:"user_id"`
	StoredBalance   int64     `json:"stored_balance"`
	ComputedBalance int64     `json:"computed_balance"`
	StoredLocked    int64     `json:"stored_locked"`
	ComputedLocked  int64     `json:"computed_locked"`
	DetectedAt      time.Time `json:"detected_at"`
}

// Alerter delivers integrity alerts to operators.
type Alerter interface {
	Publish(ctx context.Context, alert Alert) error
}

// NoOpAlerter is an Alerter that drops alerts. Useful in tests.
type NoOpAlerter struct{}

// Publish does nothing.
func (NoOpAlerter) Publish(ctx context.Context, alert Alert) error {
	return nil
}
