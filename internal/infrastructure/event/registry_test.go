package event

import (
	"context"
	"testing"

	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

// mockHandler implements EventHandler for testing
type mockHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
}

func newMockHandler(eventTypes ...string) *mockHandler {
	return &mockHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *mockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return nil
}

func (h *mockHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler("StockMerged", "StockDeducted")

	registry.Register(handler, "StockMerged", "StockDeducted")

	handlers := registry.HandlersFor("StockMerged")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.HandlersFor("StockDeducted")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.HandlersFor("DispatchOrderCompleted")
	assert.Len(t, handlers, 0)
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler() // No event types = wildcard

	registry.Register(handler)

	handlers := registry.HandlersFor("StockMerged")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.HandlersFor("AnyEventType")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])
}

func TestHandlerRegistry_Register_MixedTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	specificHandler := newMockHandler("StockMerged")
	wildcardHandler := newMockHandler()

	registry.Register(specificHandler, "StockMerged")
	registry.Register(wildcardHandler)

	handlers := registry.HandlersFor("StockMerged")
	assert.Len(t, handlers, 2)

	handlers = registry.HandlersFor("OtherEvent")
	assert.Len(t, handlers, 1)
	assert.Equal(t, wildcardHandler, handlers[0])
}

func TestHandlerRegistry_Unregister_SpecificHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	handler1 := newMockHandler("StockMerged")
	handler2 := newMockHandler("StockMerged")

	registry.Register(handler1, "StockMerged")
	registry.Register(handler2, "StockMerged")

	handlers := registry.HandlersFor("StockMerged")
	assert.Len(t, handlers, 2)

	registry.Unregister(handler1)

	handlers = registry.HandlersFor("StockMerged")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler2, handlers[0])
}

func TestHandlerRegistry_Unregister_WildcardHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcardHandler := newMockHandler()

	registry.Register(wildcardHandler)

	handlers := registry.HandlersFor("AnyEvent")
	assert.Len(t, handlers, 1)

	registry.Unregister(wildcardHandler)

	handlers = registry.HandlersFor("AnyEvent")
	assert.Len(t, handlers, 0)
}

func TestHandlerRegistry_Unregister_LeavesOtherTypesIntact(t *testing.T) {
	registry := NewHandlerRegistry()
	merged := newMockHandler("StockMerged")
	deducted := newMockHandler("StockDeducted")

	registry.Register(merged, "StockMerged")
	registry.Register(deducted, "StockDeducted")

	registry.Unregister(merged)

	assert.Len(t, registry.HandlersFor("StockMerged"), 0)
	assert.Len(t, registry.HandlersFor("StockDeducted"), 1)
}
