package ledger

import (
	"context"

	"github.com/google/uuid"
)

// StockRecordRepository is the persistence port for stock record aggregates.
type StockRecordRepository interface {
	// FindByID finds a stock record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)

	// FindByProduct finds the record for a product within a category.
	// Returns shared.ErrNotFound when no record exists.
	FindByProduct(ctx context.Context, productName string, category Category) (*StockRecord, error)

	// FindForUpdate loads the record for a product within a category holding
	// an exclusive row lock for the duration of the enclosing transaction.
	// Concurrent writers to the same (product, category) pair block until the
	// holder commits or rolls back; readers outside the transaction keep
	// seeing last-committed state.
	FindForUpdate(ctx context.Context, productName string, category Category) (*StockRecord, error)

	// FindAllByCategory lists all records in a category, ordered by product name.
	FindAllByCategory(ctx context.Context, category Category) ([]StockRecord, error)

	// Save persists the record together with its entries and package configs.
	// Implementations must reject records failing CheckInvariants.
	Save(ctx context.Context, record *StockRecord) error

	// Delete removes a record, cascading to its entries and package configs.
	Delete(ctx context.Context, id uuid.UUID) error
}
