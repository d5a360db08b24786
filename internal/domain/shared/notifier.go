package shared

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers operational notifications to external channels.
// Implementations are fire-and-forget: callers invoke Notify only after the
// enclosing transaction has committed, and a delivery failure must never be
// allowed to undo committed state.
type Notifier interface {
	Notify(ctx context.Context, kind, title, description string, subjectID uuid.UUID) error
}

// NoOpNotifier discards all notifications. Useful in tests.
type NoOpNotifier struct{}

// Notify implements Notifier
func (NoOpNotifier) Notify(context.Context, string, string, string, uuid.UUID) error {
	return nil
}
