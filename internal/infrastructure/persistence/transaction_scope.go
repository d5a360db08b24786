package persistence

import (
	"context"

	"gorm.io/gorm"

	appdispatch "github.com/coldstore/backend/internal/application/dispatch"
	"github.com/coldstore/backend/internal/application/reconcile"
	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/procurement"
)

// gormRepositories hands out repositories bound to one transaction. It
// satisfies both the dispatch and the reconcile repository sets.
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) StockRecords() ledger.StockRecordRepository {
	return NewGormStockRecordRepository(r.tx)
}

func (r *gormRepositories) Orders() dispatch.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormRepositories) Vendors() procurement.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormRepositories) RawMaterials() procurement.RawMaterialRepository {
	return NewGormRawMaterialRepository(r.tx)
}

func (r *gormRepositories) MaterialOrders() procurement.MaterialOrderRepository {
	return NewGormMaterialOrderRepository(r.tx)
}

func (r *gormRepositories) Productions() procurement.ProductionRepository {
	return NewGormProductionRepository(r.tx)
}

// GormDispatchTransactionScope implements the dispatch TransactionScope
// using GORM transactions.
type GormDispatchTransactionScope struct {
	db *gorm.DB
}

// NewGormDispatchTransactionScope creates a new GormDispatchTransactionScope.
func NewGormDispatchTransactionScope(db *gorm.DB) *GormDispatchTransactionScope {
	return &GormDispatchTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. If the
// function returns an error the transaction is rolled back, otherwise it is
// committed.
func (s *GormDispatchTransactionScope) Execute(ctx context.Context, fn func(repos appdispatch.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// GormReconcileTransactionScope implements the reconcile TransactionScope
// using GORM transactions.
type GormReconcileTransactionScope struct {
	db *gorm.DB
}

// NewGormReconcileTransactionScope creates a new GormReconcileTransactionScope.
func NewGormReconcileTransactionScope(db *gorm.DB) *GormReconcileTransactionScope {
	return &GormReconcileTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormReconcileTransactionScope) Execute(ctx context.Context, fn func(repos reconcile.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

var _ appdispatch.TransactionScope = (*GormDispatchTransactionScope)(nil)
var _ reconcile.TransactionScope = (*GormReconcileTransactionScope)(nil)
var _ appdispatch.TransactionalRepositories = (*gormRepositories)(nil)
var _ reconcile.TransactionalRepositories = (*gormRepositories)(nil)
