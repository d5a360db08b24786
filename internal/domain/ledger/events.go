package ledger

import (
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockRecord = "StockRecord"

// Event type constants
const (
	EventTypeStockRecordCreated = "StockRecordCreated"
	EventTypeStockMerged        = "StockMerged"
	EventTypeStockDeducted      = "StockDeducted"
)

// StockRecordCreatedEvent is raised on the first stock-in event for a product.
type StockRecordCreatedEvent struct {
	shared.BaseDomainEvent
	ProductName string   `json:"product_name"`
	Category    Category `json:"category"`
}

// NewStockRecordCreatedEvent creates a new StockRecordCreatedEvent
func NewStockRecordCreatedEvent(record *StockRecord) *StockRecordCreatedEvent {
	return &StockRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRecordCreated, AggregateTypeStockRecord, record.ID),
		ProductName:     record.ProductName,
		Category:        record.Category,
	}
}

// StockMergedEvent is raised when a quantity delta is merged into a chamber entry.
type StockMergedEvent struct {
	shared.BaseDomainEvent
	ProductName string          `json:"product_name"`
	ChamberID   string          `json:"chamber_id"`
	Rating      int             `json:"rating"`
	Delta       decimal.Decimal `json:"delta"`
}

// NewStockMergedEvent creates a new StockMergedEvent
func NewStockMergedEvent(record *StockRecord, chamberID string, rating int, delta decimal.Decimal) *StockMergedEvent {
	return &StockMergedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMerged, AggregateTypeStockRecord, record.ID),
		ProductName:     record.ProductName,
		ChamberID:       chamberID,
		Rating:          rating,
		Delta:           delta,
	}
}

// StockDeductedEvent is raised when bags are deducted from a chamber entry
// during dispatch application.
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	ProductName string          `json:"product_name"`
	ChamberID   string          `json:"chamber_id"`
	Rating      int             `json:"rating"`
	Bags        decimal.Decimal `json:"bags"`
}

// NewStockDeductedEvent creates a new StockDeductedEvent
func NewStockDeductedEvent(record *StockRecord, chamberID string, rating int, bags decimal.Decimal) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, AggregateTypeStockRecord, record.ID),
		ProductName:     record.ProductName,
		ChamberID:       chamberID,
		Rating:          rating,
		Bags:            bags,
	}
}
