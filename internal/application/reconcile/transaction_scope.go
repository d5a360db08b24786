package reconcile

import (
	"context"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/procurement"
)

// TransactionScope provides transactional access to every repository a
// reconciliation batch touches. A batch is all-or-nothing: the scoped
// function either commits every row's effect or none of them.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the current
// transaction.
type TransactionalRepositories interface {
	StockRecords() ledger.StockRecordRepository
	Orders() dispatch.OrderRepository
	Vendors() procurement.VendorRepository
	RawMaterials() procurement.RawMaterialRepository
	MaterialOrders() procurement.MaterialOrderRepository
	Productions() procurement.ProductionRepository
}

// NoOpTransactionScope runs the scoped function without a real transaction.
type NoOpTransactionScope struct {
	stockRecords   ledger.StockRecordRepository
	orders         dispatch.OrderRepository
	vendors        procurement.VendorRepository
	rawMaterials   procurement.RawMaterialRepository
	materialOrders procurement.MaterialOrderRepository
	productions    procurement.ProductionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	stockRecords ledger.StockRecordRepository,
	orders dispatch.OrderRepository,
	vendors procurement.VendorRepository,
	rawMaterials procurement.RawMaterialRepository,
	materialOrders procurement.MaterialOrderRepository,
	productions procurement.ProductionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRecords:   stockRecords,
		orders:         orders,
		vendors:        vendors,
		rawMaterials:   rawMaterials,
		materialOrders: materialOrders,
		productions:    productions,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) StockRecords() ledger.StockRecordRepository        { return s.stockRecords }
func (s *NoOpTransactionScope) Orders() dispatch.OrderRepository                  { return s.orders }
func (s *NoOpTransactionScope) Vendors() procurement.VendorRepository             { return s.vendors }
func (s *NoOpTransactionScope) RawMaterials() procurement.RawMaterialRepository   { return s.rawMaterials }
func (s *NoOpTransactionScope) MaterialOrders() procurement.MaterialOrderRepository {
	return s.materialOrders
}
func (s *NoOpTransactionScope) Productions() procurement.ProductionRepository { return s.productions }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
