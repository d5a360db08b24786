package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByID finds a stock record by its ID, with entries and package configs.
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockRecord, error) {
	var record ledger.StockRecord
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Preload("Packages").
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProduct finds the record for a product within a category.
func (r *GormStockRecordRepository) FindByProduct(ctx context.Context, productName string, category ledger.Category) (*ledger.StockRecord, error) {
	var record ledger.StockRecord
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Preload("Packages").
		Where("LOWER(product_name) = LOWER(?) AND category = ?", productName, category).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindForUpdate loads the record holding a SELECT ... FOR UPDATE row lock on
// the aggregate root for the rest of the enclosing transaction. Entries and
// package configs are loaded in follow-up queries inside the same
// transaction; all writers go through the root lock first, so the children
// cannot change underneath the holder.
func (r *GormStockRecordRepository) FindForUpdate(ctx context.Context, productName string, category ledger.Category) (*ledger.StockRecord, error) {
	var record ledger.StockRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("LOWER(product_name) = LOWER(?) AND category = ?", productName, category).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ?", record.ID).
		Order("chamber_id, rating").
		Find(&record.Entries).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ?", record.ID).
		Order("size, unit").
		Find(&record.Packages).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAllByCategory lists all records in a category, ordered by product name.
func (r *GormStockRecordRepository) FindAllByCategory(ctx context.Context, category ledger.Category) ([]ledger.StockRecord, error) {
	var records []ledger.StockRecord
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Preload("Packages").
		Where("category = ?", category).
		Order("product_name").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Save persists the record together with its entries and package configs.
// Children removed from the aggregate since loading are deleted.
func (r *GormStockRecordRepository) Save(ctx context.Context, record *ledger.StockRecord) error {
	if err := record.CheckInvariants(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Entries", "Packages").Save(record).Error; err != nil {
			return err
		}

		entryIDs := make([]uuid.UUID, len(record.Entries))
		for i := range record.Entries {
			record.Entries[i].StockRecordID = record.ID
			entryIDs[i] = record.Entries[i].ID
		}
		if err := deleteOrphans(tx, &ledger.StockEntry{}, "stock_record_id", record.ID, entryIDs); err != nil {
			return err
		}
		for i := range record.Entries {
			if err := tx.Save(&record.Entries[i]).Error; err != nil {
				return err
			}
		}

		packageIDs := make([]uuid.UUID, len(record.Packages))
		for i := range record.Packages {
			record.Packages[i].StockRecordID = record.ID
			packageIDs[i] = record.Packages[i].ID
		}
		if err := deleteOrphans(tx, &ledger.PackageConfig{}, "stock_record_id", record.ID, packageIDs); err != nil {
			return err
		}
		for i := range record.Packages {
			if err := tx.Save(&record.Packages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a record, cascading to its entries and package configs.
func (r *GormStockRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_record_id = ?", id).Delete(&ledger.StockEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("stock_record_id = ?", id).Delete(&ledger.PackageConfig{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&ledger.StockRecord{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// deleteOrphans removes child rows whose IDs are no longer in the aggregate.
func deleteOrphans(tx *gorm.DB, model interface{}, parentColumn string, parentID uuid.UUID, keepIDs []uuid.UUID) error {
	query := tx.Where(parentColumn+" = ?", parentID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(model).Error
}

var _ ledger.StockRecordRepository = (*GormStockRecordRepository)(nil)
