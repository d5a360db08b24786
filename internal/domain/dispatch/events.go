package dispatch

import (
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeDispatchOrder = "DispatchOrder"

// Event type constants
const (
	EventTypeOrderAllocated = "DispatchOrderAllocated"
	EventTypeOrderCompleted = "DispatchOrderCompleted"
)

// OrderAllocatedEvent is raised when stock has been deducted for an order and
// the allocation snapshot frozen on it.
type OrderAllocatedEvent struct {
	shared.BaseDomainEvent
	CustomerName string          `json:"customer_name"`
	TotalBags    decimal.Decimal `json:"total_bags"`
}

// NewOrderAllocatedEvent creates a new OrderAllocatedEvent
func NewOrderAllocatedEvent(order *Order) *OrderAllocatedEvent {
	total := decimal.Zero
	for _, plan := range order.DispatchedItems {
		total = total.Add(plan.TotalBags())
	}
	return &OrderAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAllocated, AggregateTypeDispatchOrder, order.ID),
		CustomerName:    order.CustomerName,
		TotalBags:       total,
	}
}

// OrderCompletedEvent is raised when a dispatched order leaves the facility.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	CustomerName string `json:"customer_name"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeDispatchOrder, order.ID),
		CustomerName:    order.CustomerName,
	}
}
