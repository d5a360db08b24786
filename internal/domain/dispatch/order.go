package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the dispatch order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ProductLine is one requested product with its per-chamber bag breakdown.
type ProductLine struct {
	shared.BaseEntity
	OrderID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	Name     string                 `gorm:"type:varchar(255);not null"`
	Chambers []ledger.ChamberDemand `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (ProductLine) TableName() string {
	return "dispatch_product_lines"
}

// TotalBags returns the total requested bags across the line's chambers.
func (l *ProductLine) TotalBags() decimal.Decimal {
	total := decimal.Zero
	for _, ch := range l.Chambers {
		total = total.Add(ch.Quantity)
	}
	return total
}

// TruckDetail carries the vehicle information for a dispatch.
type TruckDetail struct {
	Number       string          `json:"number"`
	DriverName   string          `json:"driver_name,omitempty"`
	CapacityBags decimal.Decimal `json:"capacity_bags"` // zero means unconstrained
}

// Order is the dispatch order aggregate: what a customer ordered, how it was
// allocated, and where in the lifecycle it sits. DispatchedItems is the frozen
// allocation snapshot recorded when stock is applied; it is never recomputed
// afterwards, giving an audit trail independent of later ledger mutations.
type Order struct {
	shared.BaseAggregateRoot
	CustomerName string      `gorm:"type:varchar(255);not null;index"`
	Status       Status      `gorm:"type:varchar(16);not null;default:'pending'"`
	Truck        TruckDetail `gorm:"type:jsonb;serializer:json"`

	Products []ProductLine        `gorm:"foreignKey:OrderID;references:ID"`
	Packages []ledger.PackageLine `gorm:"type:jsonb;serializer:json"`

	DispatchedItems map[string]ledger.AllocationPlan `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "dispatch_orders"
}

// NewOrder creates a pending dispatch order.
func NewOrder(customerName string, truck TruckDetail, products []ProductLine, packages []ledger.PackageLine) (*Order, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}
	if len(products) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Dispatch order needs at least one product line")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerName:      customerName,
		Status:            StatusPending,
		Truck:             truck,
		Products:          make([]ProductLine, 0, len(products)),
		Packages:          packages,
	}
	for _, line := range products {
		line.BaseEntity = shared.NewBaseEntity()
		line.OrderID = order.ID
		line.Name = strings.TrimSpace(line.Name)
		if line.Name == "" {
			return nil, shared.NewDomainError("INVALID_ORDER", "Product line name cannot be empty")
		}
		order.Products = append(order.Products, line)
	}
	return order, nil
}

// TotalRequestedBags sums the requested bags across all product lines.
func (o *Order) TotalRequestedBags() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Products {
		total = total.Add(o.Products[i].TotalBags())
	}
	return total
}

// RecordAllocation freezes the applied allocation plans on the order and moves
// it from pending to in-progress. Recording twice is an invalid state change.
func (o *Order) RecordAllocation(plans map[string]ledger.AllocationPlan) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record allocation for order in status %q", o.Status))
	}
	o.DispatchedItems = plans
	o.Status = StatusInProgress
	o.touch()
	o.AddDomainEvent(NewOrderAllocatedEvent(o))
	return nil
}

// Complete marks an in-progress order as completed (goods left the facility).
func (o *Order) Complete() error {
	if o.Status != StatusInProgress {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete order in status %q", o.Status))
	}
	o.Status = StatusCompleted
	o.touch()
	o.AddDomainEvent(NewOrderCompletedEvent(o))
	return nil
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
