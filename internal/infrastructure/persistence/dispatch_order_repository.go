package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/shared"
)

// GormOrderRepository implements the dispatch OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds a dispatch order by its ID, with product lines.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Order, error) {
	var order dispatch.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByStatus lists orders in a lifecycle state, newest first.
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status dispatch.Status) ([]dispatch.Order, error) {
	var orders []dispatch.Order
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists the order together with its product lines.
func (r *GormOrderRepository) Save(ctx context.Context, order *dispatch.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Save(order).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(order.Products))
		for i := range order.Products {
			order.Products[i].OrderID = order.ID
			lineIDs[i] = order.Products[i].ID
		}
		if err := deleteOrphans(tx, &dispatch.ProductLine{}, "order_id", order.ID, lineIDs); err != nil {
			return err
		}
		for i := range order.Products {
			if err := tx.Save(&order.Products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ dispatch.OrderRepository = (*GormOrderRepository)(nil)
