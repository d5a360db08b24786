package notify

import (
	"context"
	"fmt"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
)

// EventNotifier subscribes to the significant ledger and dispatch events and
// turns each into a notification, so the services emitting events do not know
// who listens.
type EventNotifier struct {
	notifier shared.Notifier
}

// NewEventNotifier creates the bridge from the event bus to a Notifier.
func NewEventNotifier(notifier shared.Notifier) *EventNotifier {
	if notifier == nil {
		notifier = shared.NoOpNotifier{}
	}
	return &EventNotifier{notifier: notifier}
}

// EventTypes lists the events this handler subscribes to.
func (h *EventNotifier) EventTypes() []string {
	return []string{
		ledger.EventTypeStockRecordCreated,
		dispatch.EventTypeOrderAllocated,
		dispatch.EventTypeOrderCompleted,
	}
}

// Handle turns one domain event into a notification.
func (h *EventNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.StockRecordCreatedEvent:
		return h.notifier.Notify(ctx, "ledger", "New product on the ledger",
			fmt.Sprintf("%s (%s)", e.ProductName, e.Category), e.AggregateID())
	case *dispatch.OrderAllocatedEvent:
		return h.notifier.Notify(ctx, "dispatch", "Dispatch allocated",
			fmt.Sprintf("%s bags reserved for %s", e.TotalBags.String(), e.CustomerName), e.AggregateID())
	case *dispatch.OrderCompletedEvent:
		return h.notifier.Notify(ctx, "dispatch", "Dispatch completed",
			fmt.Sprintf("Order for %s left the facility", e.CustomerName), e.AggregateID())
	}
	return nil
}

var _ shared.EventHandler = (*EventNotifier)(nil)
