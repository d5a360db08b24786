package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/procurement"
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/coldstore/backend/internal/infrastructure/sheet"
)

// DefaultMaxErrors caps how many row errors a batch response carries.
const DefaultMaxErrors = 100

// Result summarizes what one committed reconciliation batch changed.
type Result struct {
	TotalRows             int `json:"total_rows"`
	VendorsCreated        int `json:"vendors_created"`
	MaterialsCreated      int `json:"materials_created"`
	MaterialOrdersCreated int `json:"material_orders_created"`
	ProductionsCreated    int `json:"productions_created"`
	RecordsCreated        int `json:"records_created"`
	StockRowsMerged       int `json:"stock_rows_merged"`
	DispatchesApplied     int `json:"dispatches_applied"`
}

// Service reconciles import workbooks against the ledger. A batch is applied
// in a single transaction: every row lands or none do, and callers get the
// full list of row errors in one response rather than one failure per upload.
type Service struct {
	scope          TransactionScope
	applier        dispatch.Applier
	eventPublisher shared.EventPublisher
	notifier       shared.Notifier
	logger         *zap.Logger
	maxErrors      int
}

// NewService creates a reconcile Service.
func NewService(scope TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:     scope,
		applier:   dispatch.NewApplier(),
		notifier:  shared.NoOpNotifier{},
		logger:    logger,
		maxErrors: DefaultMaxErrors,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the notifier for post-commit notifications
func (s *Service) SetNotifier(notifier shared.Notifier) {
	s.notifier = notifier
}

// SetMaxErrors overrides the row error cap.
func (s *Service) SetMaxErrors(n int) {
	s.maxErrors = n
}

// batchState carries the per-batch caches through one transaction.
type batchState struct {
	repos  TransactionalRepositories
	errs   *sheet.ErrorCollection
	result *Result

	vendorsByName map[string]*procurement.Vendor
	materials     map[string]*procurement.RawMaterial
	ordersByRef   map[string]*procurement.MaterialOrder

	resolvers map[ledger.Category]*ProductResolver
	records   map[string]*ledger.StockRecord // key: folded name | category
	locked    map[string]bool
	dirty     map[string]*ledger.StockRecord
	orders    []*dispatch.Order
}

// ReconcileBatch validates and applies one workbook's rows in a single
// transaction. Validation failures anywhere in the batch abort the whole
// batch with a ValidationError carrying every collected row error; nothing
// is committed.
func (s *Service) ReconcileBatch(ctx context.Context, rows []sheet.Row) (*Result, error) {
	batch, parseErrs := ParseBatch(rows, s.maxErrors)
	if parseErrs.HasErrors() {
		return nil, sheet.NewValidationError(parseErrs)
	}

	result := &Result{TotalRows: batch.Size()}
	var committed *batchState

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		state := &batchState{
			repos:         repos,
			errs:          sheet.NewErrorCollection(s.maxErrors),
			result:        result,
			vendorsByName: make(map[string]*procurement.Vendor),
			materials:     make(map[string]*procurement.RawMaterial),
			ordersByRef:   make(map[string]*procurement.MaterialOrder),
			resolvers:     make(map[ledger.Category]*ProductResolver),
			records:       make(map[string]*ledger.StockRecord),
			locked:        make(map[string]bool),
			dirty:         make(map[string]*ledger.StockRecord),
		}

		if err := s.applyVendors(ctx, state, batch.Vendors); err != nil {
			return err
		}
		if err := s.applyMaterialOrders(ctx, state, batch.MaterialOrders); err != nil {
			return err
		}
		if err := s.applyProductions(ctx, state, batch.Productions); err != nil {
			return err
		}
		if err := s.applyChamberStock(ctx, state, batch.ChamberStock); err != nil {
			return err
		}
		if err := s.applyDispatches(ctx, state, batch.Dispatches); err != nil {
			return err
		}

		if state.errs.HasErrors() {
			return sheet.NewValidationError(state.errs)
		}

		for _, record := range state.dirty {
			if err := repos.StockRecords().Save(ctx, record); err != nil {
				return fmt.Errorf("save stock record %q: %w", record.ProductName, err)
			}
		}
		committed = state
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, committed, result)
	return result, nil
}

func (s *Service) applyVendors(ctx context.Context, state *batchState, rows []VendorRow) error {
	for _, row := range rows {
		_, created, err := s.resolveVendor(ctx, state, row.Name, row.Phone, row.Address)
		if err != nil {
			return err
		}
		if created {
			state.result.VendorsCreated++
		}
	}
	return nil
}

// resolveVendor finds a vendor by normalized name, creating it on first use.
func (s *Service) resolveVendor(ctx context.Context, state *batchState, name, phone, address string) (*procurement.Vendor, bool, error) {
	key := procurement.NormalizeName(name)
	if vendor, ok := state.vendorsByName[key]; ok {
		return vendor, false, nil
	}

	vendor, err := state.repos.Vendors().FindByNormalizedName(ctx, key)
	if err == nil {
		state.vendorsByName[key] = vendor
		return vendor, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	vendor, err = procurement.NewVendor(name, phone, address)
	if err != nil {
		return nil, false, err
	}
	if err := state.repos.Vendors().Save(ctx, vendor); err != nil {
		return nil, false, fmt.Errorf("save vendor %q: %w", name, err)
	}
	state.vendorsByName[key] = vendor
	return vendor, true, nil
}

// resolveMaterial finds a raw material by normalized name, creating it on first use.
func (s *Service) resolveMaterial(ctx context.Context, state *batchState, name, unit string) (*procurement.RawMaterial, error) {
	key := procurement.NormalizeName(name)
	if material, ok := state.materials[key]; ok {
		return material, nil
	}

	material, err := state.repos.RawMaterials().FindByNormalizedName(ctx, key)
	if err == nil {
		state.materials[key] = material
		return material, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	material, err = procurement.NewRawMaterial(name, unit)
	if err != nil {
		return nil, err
	}
	if err := state.repos.RawMaterials().Save(ctx, material); err != nil {
		return nil, fmt.Errorf("save raw material %q: %w", name, err)
	}
	state.materials[key] = material
	state.result.MaterialsCreated++
	return material, nil
}

func (s *Service) applyMaterialOrders(ctx context.Context, state *batchState, rows []MaterialOrderRow) error {
	for _, row := range rows {
		vendor, created, err := s.resolveVendor(ctx, state, row.VendorName, "", "")
		if err != nil {
			return err
		}
		if created {
			state.result.VendorsCreated++
		}
		material, err := s.resolveMaterial(ctx, state, row.MaterialName, row.Unit)
		if err != nil {
			return err
		}

		order, err := procurement.NewMaterialOrder(material.ID, vendor.ID, row.Quantity, row.Unit, row.ArrivalDate)
		if err != nil {
			addDomainError(state.errs, row.Line, "quantity", err)
			continue
		}
		order.Truck = procurement.TruckDetail{Number: row.TruckNumber, DriverName: row.DriverName}
		order.Challan = procurement.ChallanDetail{Number: row.ChallanNumber, Weight: row.ChallanWeight}

		if err := state.repos.MaterialOrders().Save(ctx, order); err != nil {
			return fmt.Errorf("save material order: %w", err)
		}
		state.result.MaterialOrdersCreated++
		if row.Ref != "" {
			state.ordersByRef[row.Ref] = order
		}
	}
	return nil
}

func (s *Service) applyProductions(ctx context.Context, state *batchState, rows []ProductionRow) error {
	for _, row := range rows {
		production, err := procurement.NewProduction(row.ProductName, row.OutputBags, row.ProducedOn)
		if err != nil {
			addDomainError(state.errs, row.Line, "quantity", err)
			continue
		}

		if order, err := s.findIntakeFor(ctx, state, row); err != nil {
			return err
		} else if order != nil {
			production.LinkMaterialOrder(order.ID)
		}

		if err := state.repos.Productions().Save(ctx, production); err != nil {
			return fmt.Errorf("save production: %w", err)
		}
		state.result.ProductionsCreated++
	}
	return nil
}

// findIntakeFor locates the intake a production run consumed: by explicit
// batch-local ref first, then by material and arrival date, then the newest
// intake of the material. Returns nil when nothing matches; an unlinked run
// is recorded rather than rejected.
func (s *Service) findIntakeFor(ctx context.Context, state *batchState, row ProductionRow) (*procurement.MaterialOrder, error) {
	if row.OrderRef != "" {
		if order, ok := state.ordersByRef[row.OrderRef]; ok {
			return order, nil
		}
		addRowError(state.errs, row.Line, "order_ref", sheet.ErrCodeReferenceNotFound,
			fmt.Sprintf("no intake row with ref %q in this batch", row.OrderRef))
		return nil, nil
	}

	if row.MaterialName == "" {
		return nil, nil
	}
	material, err := state.repos.RawMaterials().FindByNormalizedName(ctx, procurement.NormalizeName(row.MaterialName))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !row.ProducedOn.IsZero() {
		orders, err := state.repos.MaterialOrders().FindByMaterialAndArrival(ctx, material.ID, row.ProducedOn)
		if err != nil {
			return nil, err
		}
		if len(orders) > 0 {
			return &orders[0], nil
		}
	}
	orders, err := state.repos.MaterialOrders().FindByMaterial(ctx, material.ID)
	if err != nil {
		return nil, err
	}
	if len(orders) > 0 {
		return &orders[0], nil
	}
	return nil, nil
}

func (s *Service) applyChamberStock(ctx context.Context, state *batchState, rows []ChamberStockRow) error {
	for _, row := range rows {
		record, err := s.resolveRecord(ctx, state, row.ProductName, row.Category)
		if err != nil {
			return err
		}

		if record == nil {
			if row.Quantity.IsNegative() {
				addRowError(state.errs, row.Line, "product_name", sheet.ErrCodeReferenceNotFound,
					fmt.Sprintf("cannot deduct from unknown product %q", row.ProductName))
				continue
			}
			record, err = s.createRecord(state, row)
			if err != nil {
				addDomainError(state.errs, row.Line, "product_name", err)
				continue
			}
		} else if record, err = s.lockRecord(ctx, state, record); err != nil {
			return err
		}

		if row.PackageSize.IsPositive() {
			unit := defaultString(row.PackageUnit, "kg")
			if err := record.MergePackage(row.PackageSize, unit, decimal.Zero, row.PacketsPerBag); err != nil {
				addDomainError(state.errs, row.Line, "package_size", err)
				continue
			}
		}

		if err := record.MergeEntry(row.ChamberID, row.Rating, row.Quantity, row.PacketsPerBag); err != nil {
			addDomainError(state.errs, row.Line, "quantity", err)
			continue
		}
		state.markDirty(record)
		state.result.StockRowsMerged++
	}
	return nil
}

// createRecord starts a ledger record for a product first seen in this batch.
func (s *Service) createRecord(state *batchState, row ChamberStockRow) (*ledger.StockRecord, error) {
	var packages []ledger.PackageConfig
	if row.Category == ledger.CategoryPacked {
		size := row.PackageSize
		unit := defaultString(row.PackageUnit, "kg")
		if !size.IsPositive() {
			return nil, shared.ErrMissingPackageConfig
		}
		packages = append(packages, ledger.PackageConfig{
			Size:          size,
			Unit:          unit,
			PacketsPerBag: row.PacketsPerBag,
		})
	}
	record, err := ledger.NewStockRecord(row.ProductName, row.Category, row.Unit, packages)
	if err != nil {
		return nil, err
	}
	state.cacheRecord(record)
	state.markLocked(record) // the insert itself is covered by the transaction
	state.resolverFor(row.Category).Register(record.ProductName)
	state.result.RecordsCreated++
	return record, nil
}

func (s *Service) applyDispatches(ctx context.Context, state *batchState, rows []DispatchRow) error {
	for _, row := range rows {
		record, err := s.resolveDispatchRecord(ctx, state, row.ProductName)
		if err != nil {
			return err
		}
		if record == nil {
			addRowError(state.errs, row.Line, "product_name", sheet.ErrCodeReferenceNotFound,
				fmt.Sprintf("no stock record matches product %q", row.ProductName))
			continue
		}

		order, err := dispatch.NewOrder(row.CustomerName,
			dispatch.TruckDetail{Number: row.TruckNumber, DriverName: row.DriverName, CapacityBags: row.TruckCapacity},
			[]dispatch.ProductLine{{Name: record.ProductName, Chambers: row.Chambers}},
			row.Packages)
		if err != nil {
			addDomainError(state.errs, row.Line, "customer_name", err)
			continue
		}

		plan, err := ledger.PlanAllocation(record, ledger.AllocationRequest{
			ProductName: record.ProductName,
			Chambers:    row.Chambers,
			Packages:    row.Packages,
		})
		if err != nil {
			addDomainError(state.errs, row.Line, "chamber_breakdown", err)
			continue
		}

		err = s.applier.Apply(order,
			map[string]ledger.AllocationPlan{record.ProductName: plan},
			map[string]*ledger.StockRecord{record.ProductName: record})
		if err != nil {
			addDomainError(state.errs, row.Line, "chamber_breakdown", err)
			continue
		}

		if err := state.repos.Orders().Save(ctx, order); err != nil {
			return fmt.Errorf("save dispatch order: %w", err)
		}
		state.markDirty(record)
		state.orders = append(state.orders, order)
		state.result.DispatchesApplied++
	}
	return nil
}

// resolveRecord finds the ledger record a stock row targets, using fuzzy
// name matching within the row's category.
func (s *Service) resolveRecord(ctx context.Context, state *batchState, productName string, category ledger.Category) (*ledger.StockRecord, error) {
	if err := s.primeCategory(ctx, state, category); err != nil {
		return nil, err
	}
	canonical, ok := state.resolverFor(category).Resolve(productName)
	if !ok {
		return nil, nil
	}
	return state.records[recordKey(canonical, category)], nil
}

// resolveDispatchRecord resolves a dispatched product, packed category first.
// The record is reloaded under a row lock before any deduction.
func (s *Service) resolveDispatchRecord(ctx context.Context, state *batchState, productName string) (*ledger.StockRecord, error) {
	for _, category := range []ledger.Category{ledger.CategoryPacked, ledger.CategoryOther} {
		record, err := s.resolveRecord(ctx, state, productName, category)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		return s.lockRecord(ctx, state, record)
	}
	return nil, nil
}

// lockRecord reloads a record under a row lock before its first mutation in
// the transaction, so concurrent batches touching the same product serialize
// on the database row instead of overwriting each other's merges. A record
// that is already locked keeps its in-memory mutations; one created in this
// batch is not yet visible to FindForUpdate and its insert is covered by the
// transaction itself.
func (s *Service) lockRecord(ctx context.Context, state *batchState, record *ledger.StockRecord) (*ledger.StockRecord, error) {
	key := recordKey(record.ProductName, record.Category)
	if state.locked[key] {
		return state.records[key], nil
	}
	locked, err := state.repos.StockRecords().FindForUpdate(ctx, record.ProductName, record.Category)
	if errors.Is(err, shared.ErrNotFound) {
		state.locked[key] = true
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	state.locked[key] = true
	state.cacheRecord(locked)
	return locked, nil
}

// primeCategory loads a category's records once per batch and seeds the
// fuzzy resolver with their product names.
func (s *Service) primeCategory(ctx context.Context, state *batchState, category ledger.Category) error {
	if _, ok := state.resolvers[category]; ok {
		return nil
	}
	resolver := NewProductResolver(nil)
	state.resolvers[category] = resolver

	records, err := state.repos.StockRecords().FindAllByCategory(ctx, category)
	if err != nil {
		return err
	}
	for i := range records {
		record := records[i]
		resolver.Register(record.ProductName)
		state.cacheRecord(&record)
	}
	return nil
}

func (state *batchState) resolverFor(category ledger.Category) *ProductResolver {
	if resolver, ok := state.resolvers[category]; ok {
		return resolver
	}
	resolver := NewProductResolver(nil)
	state.resolvers[category] = resolver
	return resolver
}

func (state *batchState) cacheRecord(record *ledger.StockRecord) {
	state.records[recordKey(record.ProductName, record.Category)] = record
}

func (state *batchState) markLocked(record *ledger.StockRecord) {
	state.locked[recordKey(record.ProductName, record.Category)] = true
}

func (state *batchState) markDirty(record *ledger.StockRecord) {
	key := recordKey(record.ProductName, record.Category)
	state.records[key] = record
	state.dirty[key] = record
}

func recordKey(productName string, category ledger.Category) string {
	return FoldName(productName) + "|" + string(category)
}

// afterCommit publishes domain events and a batch summary notification.
// The batch is already durable; messaging failures are only logged.
func (s *Service) afterCommit(ctx context.Context, state *batchState, result *Result) {
	if state == nil {
		return
	}
	if s.eventPublisher != nil {
		var events []shared.DomainEvent
		for _, record := range state.dirty {
			events = append(events, record.GetDomainEvents()...)
			record.ClearDomainEvents()
		}
		for _, order := range state.orders {
			events = append(events, order.GetDomainEvents()...)
			order.ClearDomainEvents()
		}
		if len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish reconcile events", zap.Error(err))
			}
		}
	}

	summary := fmt.Sprintf("%d rows: %d stock merges, %d dispatches, %d intakes, %d productions",
		result.TotalRows, result.StockRowsMerged, result.DispatchesApplied,
		result.MaterialOrdersCreated, result.ProductionsCreated)
	if err := s.notifier.Notify(ctx, "reconcile", "Import batch applied", summary, uuid.Nil); err != nil {
		s.logger.Warn("reconcile notification failed", zap.Error(err))
	}
	s.logger.Info("reconcile batch committed",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("stock_rows_merged", result.StockRowsMerged),
		zap.Int("dispatches_applied", result.DispatchesApplied))
}

func addDomainError(errs *sheet.ErrorCollection, row sheet.Row, column string, err error) {
	code := sheet.ErrCodeValidation
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	errs.Add(sheet.NewRowError(row.SheetName, row.LineNumber, column, code, err.Error()))
}

func addRowError(errs *sheet.ErrorCollection, row sheet.Row, column, code, message string) {
	errs.Add(sheet.NewRowError(row.SheetName, row.LineNumber, column, code, message))
}

