package procurement

import (
	"strings"
	"time"

	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawMaterial is the master row for one raw-material product name.
type RawMaterial struct {
	shared.BaseAggregateRoot
	Name           string `gorm:"type:varchar(255);not null"`
	NormalizedName string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Unit           string `gorm:"type:varchar(16);not null"`
}

// TableName returns the table name for GORM
func (RawMaterial) TableName() string {
	return "raw_materials"
}

// NewRawMaterial creates a raw-material master row.
func NewRawMaterial(name, unit string) (*RawMaterial, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Raw material name cannot be empty")
	}
	return &RawMaterial{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NormalizedName:    NormalizeName(name),
		Unit:              unit,
	}, nil
}

// ChallanDetail is the delivery-challan sub-record on an intake order.
type ChallanDetail struct {
	Number string          `json:"number,omitempty"`
	Weight decimal.Decimal `json:"weight,omitempty"`
}

// TruckDetail is the vehicle sub-record on an intake order.
type TruckDetail struct {
	Number     string `json:"number,omitempty"`
	DriverName string `json:"driver_name,omitempty"`
}

// MaterialOrder is one raw-material intake from a vendor.
type MaterialOrder struct {
	shared.BaseAggregateRoot
	MaterialID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(16);not null"`
	ArrivalDate time.Time       `gorm:"not null;index"`
	Truck       TruckDetail     `gorm:"type:jsonb;serializer:json"`
	Challan     ChallanDetail   `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (MaterialOrder) TableName() string {
	return "material_orders"
}

// NewMaterialOrder records a raw-material intake.
func NewMaterialOrder(materialID, vendorID uuid.UUID, quantity decimal.Decimal, unit string, arrival time.Time) (*MaterialOrder, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Intake quantity must be positive")
	}
	return &MaterialOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MaterialID:        materialID,
		VendorID:          vendorID,
		Quantity:          quantity,
		Unit:              unit,
		ArrivalDate:       arrival,
	}, nil
}

// Production is one production run consuming a raw-material intake.
type Production struct {
	shared.BaseAggregateRoot
	MaterialOrderID uuid.UUID       `gorm:"type:uuid;index"` // nil when the intake could not be resolved
	ProductName     string          `gorm:"type:varchar(255);not null"`
	OutputBags      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProducedOn      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Production) TableName() string {
	return "productions"
}

// NewProduction records a production run.
func NewProduction(productName string, outputBags decimal.Decimal, producedOn time.Time) (*Production, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Production product name cannot be empty")
	}
	if outputBags.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Production output must be positive")
	}
	return &Production{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductName:       productName,
		OutputBags:        outputBags,
		ProducedOn:        producedOn,
	}, nil
}

// LinkMaterialOrder attaches the intake this run consumed.
func (p *Production) LinkMaterialOrder(orderID uuid.UUID) {
	p.MaterialOrderID = orderID
}
