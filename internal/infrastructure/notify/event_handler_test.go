package notify

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
)

type recordedNotification struct {
	kind        string
	title       string
	description string
	subjectID   uuid.UUID
}

type recordingNotifier struct {
	notifications []recordedNotification
}

func (r *recordingNotifier) Notify(_ context.Context, kind, title, description string, subjectID uuid.UUID) error {
	r.notifications = append(r.notifications, recordedNotification{kind, title, description, subjectID})
	return nil
}

func TestEventNotifier_Handle(t *testing.T) {
	sink := &recordingNotifier{}
	handler := NewEventNotifier(sink)

	record, err := ledger.NewStockRecord("Mango Pulp", ledger.CategoryOther, "bag", nil)
	require.NoError(t, err)

	order, err := dispatch.NewOrder("Acme Foods", dispatch.TruckDetail{Number: "KA-01-1234"},
		[]dispatch.ProductLine{{Name: "Mango Pulp", Chambers: []ledger.ChamberDemand{
			{ChamberID: "A", Quantity: decimal.NewFromInt(50)},
		}}}, nil)
	require.NoError(t, err)
	require.NoError(t, order.RecordAllocation(map[string]ledger.AllocationPlan{
		"Mango Pulp": {"10-kg-4": {TotalBags: decimal.NewFromInt(50)}},
	}))

	events := order.GetDomainEvents()
	require.Len(t, events, 1)

	require.NoError(t, handler.Handle(context.Background(), ledger.NewStockRecordCreatedEvent(record)))
	require.NoError(t, handler.Handle(context.Background(), events[0]))

	require.Len(t, sink.notifications, 2)
	assert.Equal(t, "ledger", sink.notifications[0].kind)
	assert.Contains(t, sink.notifications[0].description, "Mango Pulp")
	assert.Equal(t, record.ID, sink.notifications[0].subjectID)

	assert.Equal(t, "dispatch", sink.notifications[1].kind)
	assert.Equal(t, "Dispatch allocated", sink.notifications[1].title)
	assert.Contains(t, sink.notifications[1].description, "Acme Foods")
	assert.Equal(t, order.ID, sink.notifications[1].subjectID)
}

func TestEventNotifier_IgnoresUnknownEvents(t *testing.T) {
	sink := &recordingNotifier{}
	handler := NewEventNotifier(sink)

	event := shared.NewBaseDomainEvent("SomethingElse", "Other", uuid.New())
	require.NoError(t, handler.Handle(context.Background(), &event))
	assert.Empty(t, sink.notifications)
}

func TestEventNotifier_EventTypes(t *testing.T) {
	handler := NewEventNotifier(nil)
	assert.ElementsMatch(t, []string{
		ledger.EventTypeStockRecordCreated,
		dispatch.EventTypeOrderAllocated,
		dispatch.EventTypeOrderCompleted,
	}, handler.EventTypes())
}
