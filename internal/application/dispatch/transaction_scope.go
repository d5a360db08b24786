package dispatch

import (
	"context"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// dispatch touches. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// the current transaction.
//
// Aggregate boundary notes:
//   - StockRecords: the stock record aggregate owns its chamber entries and
//     package configs; both are persisted through the aggregate root.
//   - Orders: the dispatch order aggregate owns its product lines.
type TransactionalRepositories interface {
	// StockRecords returns the stock record repository scoped to the current transaction
	StockRecords() ledger.StockRecordRepository
	// Orders returns the dispatch order repository scoped to the current transaction
	Orders() dispatch.OrderRepository
}

// NoOpTransactionScope runs the scoped function without a real transaction.
// Useful in tests and anywhere transactional guarantees are not required.
type NoOpTransactionScope struct {
	stockRecords ledger.StockRecordRepository
	orders       dispatch.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(stockRecords ledger.StockRecordRepository, orders dispatch.OrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{stockRecords: stockRecords, orders: orders}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRecords returns the stock record repository.
func (s *NoOpTransactionScope) StockRecords() ledger.StockRecordRepository {
	return s.stockRecords
}

// Orders returns the dispatch order repository.
func (s *NoOpTransactionScope) Orders() dispatch.OrderRepository {
	return s.orders
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
