package dispatch

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository is the persistence port for dispatch order aggregates.
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByStatus lists orders in a lifecycle state, newest first.
	FindByStatus(ctx context.Context, status Status) ([]Order, error)

	// Save persists the order together with its product lines.
	Save(ctx context.Context, order *Order) error
}
