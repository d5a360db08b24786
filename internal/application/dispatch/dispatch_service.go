package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
)

// Service plans and applies dispatch orders atomically. All ledger reads
// inside CreateDispatch take exclusive row locks, so two trucks loading the
// same product serialize at the database and neither can dispatch bags the
// other already claimed.
type Service struct {
	scope          TransactionScope
	applier        dispatch.Applier
	eventPublisher shared.EventPublisher
	notifier       shared.Notifier
	logger         *zap.Logger
}

// NewService creates a dispatch Service.
func NewService(scope TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:    scope,
		applier:  dispatch.NewApplier(),
		notifier: shared.NoOpNotifier{},
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNotifier sets the notifier for post-commit notifications
func (s *Service) SetNotifier(notifier shared.Notifier) {
	s.notifier = notifier
}

// CreateDispatch creates a dispatch order, allocates stock for every product
// line and deducts the allocation from the ledger, all in one transaction.
// Any failure rolls the whole dispatch back; the ledger is left untouched.
func (s *Service) CreateDispatch(ctx context.Context, req CreateDispatchRequest) (*OrderResponse, error) {
	order, err := req.toDomain()
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		plans := make(map[string]ledger.AllocationPlan, len(order.Products))
		records := make(map[string]*ledger.StockRecord, len(order.Products))

		for i := range order.Products {
			line := &order.Products[i]
			record, err := s.lockRecord(ctx, repos, line.Name)
			if err != nil {
				return err
			}
			records[line.Name] = record

			plan, err := ledger.PlanAllocation(record, ledger.AllocationRequest{
				ProductName: line.Name,
				Chambers:    line.Chambers,
				Packages:    order.Packages,
			})
			if err != nil {
				return fmt.Errorf("plan %q: %w", line.Name, err)
			}
			plans[line.Name] = plan
		}

		if err := s.applier.Apply(order, plans, records); err != nil {
			return err
		}

		for _, record := range records {
			if err := repos.StockRecords().Save(ctx, record); err != nil {
				return fmt.Errorf("save stock record %q: %w", record.ProductName, err)
			}
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// lockRecord loads the product's stock record under an exclusive row lock,
// packed category first since dispatches ship finished goods.
func (s *Service) lockRecord(ctx context.Context, repos TransactionalRepositories, productName string) (*ledger.StockRecord, error) {
	record, err := repos.StockRecords().FindForUpdate(ctx, productName, ledger.CategoryPacked)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	record, err = repos.StockRecords().FindForUpdate(ctx, productName, ledger.CategoryOther)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrNoStockForProduct
	}
	return record, err
}

// GetOrder retrieves a dispatch order by ID.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListOrders lists dispatch orders in a lifecycle state.
func (s *Service) ListOrders(ctx context.Context, status dispatch.Status) ([]OrderResponse, error) {
	var responses []OrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.Orders().FindByStatus(ctx, status)
		if err != nil {
			return err
		}
		responses = make([]OrderResponse, 0, len(orders))
		for i := range orders {
			responses = append(responses, ToOrderResponse(&orders[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// CompleteOrder marks an allocated order as completed once the truck leaves.
func (s *Service) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var order *dispatch.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := found.Complete(); err != nil {
			return err
		}
		order = found
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// afterCommit publishes domain events and notifications for a committed
// order. Failures are logged, never propagated: the transaction is already
// durable and a messaging hiccup must not look like a dispatch failure.
func (s *Service) afterCommit(ctx context.Context, order *dispatch.Order) {
	events := order.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish dispatch events",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()

	title := fmt.Sprintf("Dispatch for %s", order.CustomerName)
	description := fmt.Sprintf("%s bags across %d product(s), truck %s",
		order.TotalRequestedBags().String(), len(order.Products), order.Truck.Number)
	if err := s.notifier.Notify(ctx, "dispatch", title, description, order.ID); err != nil {
		s.logger.Warn("dispatch notification failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
