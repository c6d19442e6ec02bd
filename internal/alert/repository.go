package alert

import (
	"context"
	"time"
)

// Repository defines the interface for alert persistence.
type Repository interface {
	// Create stores an alert and reports whether it was inserted. Storing an
	// ID that already exists is a no-op and reports false.
	Create(ctx context.Context, a *Alert) (bool, error)

	// ListSince returns alerts created after since, newest first.
	ListSince(ctx context.Context, since time.Time, limit int) ([]*Alert, error)

	// MarkRead flags an alert as read.
	// Returns ErrAlertNotFound if the alert doesn't exist.
	MarkRead(ctx context.Context, id string) error

	// Count returns the number of stored alerts.
	Count(ctx context.Context) (int, error)
}
