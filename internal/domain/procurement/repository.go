package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VendorRepository is the persistence port for vendors.
type VendorRepository interface {
	// FindByNormalizedName finds a vendor by its case-normalized name.
	FindByNormalizedName(ctx context.Context, name string) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// RawMaterialRepository is the persistence port for raw-material master rows.
type RawMaterialRepository interface {
	FindByNormalizedName(ctx context.Context, name string) (*RawMaterial, error)
	Save(ctx context.Context, material *RawMaterial) error
}

// MaterialOrderRepository is the persistence port for intake orders.
type MaterialOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialOrder, error)
	// FindByMaterialAndArrival finds intakes for a material arriving on a day,
	// newest first. Used as the fallback when a production row carries no
	// explicit intake reference.
	FindByMaterialAndArrival(ctx context.Context, materialID uuid.UUID, arrival time.Time) ([]MaterialOrder, error)
	// FindByMaterial lists all intakes for a material, newest first.
	FindByMaterial(ctx context.Context, materialID uuid.UUID) ([]MaterialOrder, error)
	Save(ctx context.Context, order *MaterialOrder) error
}

// ProductionRepository is the persistence port for production runs.
type ProductionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Production, error)
	Save(ctx context.Context, production *Production) error
}
