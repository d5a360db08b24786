package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coldstore/backend/internal/domain/procurement"
	"github.com/coldstore/backend/internal/domain/shared"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByNormalizedName finds a vendor by its case-normalized name.
func (r *GormVendorRepository) FindByNormalizedName(ctx context.Context, name string) (*procurement.Vendor, error) {
	var vendor procurement.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "normalized_name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// Save creates or updates a vendor.
func (r *GormVendorRepository) Save(ctx context.Context, vendor *procurement.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// FindByNormalizedName finds a raw material by its case-normalized name.
func (r *GormRawMaterialRepository) FindByNormalizedName(ctx context.Context, name string) (*procurement.RawMaterial, error) {
	var material procurement.RawMaterial
	err := r.db.WithContext(ctx).First(&material, "normalized_name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// Save creates or updates a raw material.
func (r *GormRawMaterialRepository) Save(ctx context.Context, material *procurement.RawMaterial) error {
	return r.db.WithContext(ctx).Save(material).Error
}

// GormMaterialOrderRepository implements MaterialOrderRepository using GORM
type GormMaterialOrderRepository struct {
	db *gorm.DB
}

// NewGormMaterialOrderRepository creates a new GormMaterialOrderRepository
func NewGormMaterialOrderRepository(db *gorm.DB) *GormMaterialOrderRepository {
	return &GormMaterialOrderRepository{db: db}
}

// FindByID finds an intake order by its ID.
func (r *GormMaterialOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.MaterialOrder, error) {
	var order procurement.MaterialOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByMaterialAndArrival finds intakes for a material arriving on a
// calendar day, newest first.
func (r *GormMaterialOrderRepository) FindByMaterialAndArrival(ctx context.Context, materialID uuid.UUID, arrival time.Time) ([]procurement.MaterialOrder, error) {
	dayStart := time.Date(arrival.Year(), arrival.Month(), arrival.Day(), 0, 0, 0, 0, arrival.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var orders []procurement.MaterialOrder
	err := r.db.WithContext(ctx).
		Where("material_id = ? AND arrival_date >= ? AND arrival_date < ?", materialID, dayStart, dayEnd).
		Order("arrival_date DESC, created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByMaterial lists all intakes for a material, newest first.
func (r *GormMaterialOrderRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]procurement.MaterialOrder, error) {
	var orders []procurement.MaterialOrder
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("arrival_date DESC, created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an intake order.
func (r *GormMaterialOrderRepository) Save(ctx context.Context, order *procurement.MaterialOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// GormProductionRepository implements ProductionRepository using GORM
type GormProductionRepository struct {
	db *gorm.DB
}

// NewGormProductionRepository creates a new GormProductionRepository
func NewGormProductionRepository(db *gorm.DB) *GormProductionRepository {
	return &GormProductionRepository{db: db}
}

// FindByID finds a production run by its ID.
func (r *GormProductionRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Production, error) {
	var production procurement.Production
	err := r.db.WithContext(ctx).First(&production, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &production, nil
}

// Save creates or updates a production run.
func (r *GormProductionRepository) Save(ctx context.Context, production *procurement.Production) error {
	return r.db.WithContext(ctx).Save(production).Error
}

var _ procurement.VendorRepository = (*GormVendorRepository)(nil)
var _ procurement.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
var _ procurement.MaterialOrderRepository = (*GormMaterialOrderRepository)(nil)
var _ procurement.ProductionRepository = (*GormProductionRepository)(nil)
