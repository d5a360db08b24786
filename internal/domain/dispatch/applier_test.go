package dispatch

import (
	"testing"

	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func mangoRecord(t *testing.T) *ledger.StockRecord {
	t.Helper()
	record, err := ledger.NewStockRecord("Mango Pulp", ledger.CategoryPacked, "kg", []ledger.PackageConfig{
		{Size: d(10), Unit: "kg", PacketsPerBag: 4},
		{Size: d(25), Unit: "kg", PacketsPerBag: 2},
	})
	require.NoError(t, err)
	require.NoError(t, record.MergeEntry("A", 4, d(120), 4))
	require.NoError(t, record.MergeEntry("B", 4, d(80), 4))
	record.ClearDomainEvents()
	return record
}

func mangoOrder(t *testing.T, chambers []ledger.ChamberDemand, packages []ledger.PackageLine) *Order {
	t.Helper()
	order, err := NewOrder("Sharma Traders", TruckDetail{Number: "MH12AB1234"},
		[]ProductLine{{Name: "Mango Pulp", Chambers: chambers}}, packages)
	require.NoError(t, err)
	return order
}

func planFor(t *testing.T, record *ledger.StockRecord, order *Order) map[string]ledger.AllocationPlan {
	t.Helper()
	plans := make(map[string]ledger.AllocationPlan)
	for i := range order.Products {
		plan, err := ledger.PlanAllocation(record, ledger.AllocationRequest{
			ProductName: order.Products[i].Name,
			Chambers:    order.Products[i].Chambers,
			Packages:    order.Packages,
		})
		require.NoError(t, err)
		plans[order.Products[i].Name] = plan
	}
	return plans
}

func TestApplier_Apply(t *testing.T) {
	t.Run("drains ledger to zero on the round-trip order", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(120)}, {ChamberID: "B", Quantity: d(80)}},
			[]ledger.PackageLine{
				{Size: d(10), Unit: "kg", Quantity: d(150)},
				{Size: d(25), Unit: "kg", Quantity: d(50)},
			})
		plans := planFor(t, record, order)

		err := NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		require.NoError(t, err)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.IsZero())
		assert.True(t, record.EntryFor("B", 4).QuantityBags.IsZero())
		assert.Equal(t, StatusInProgress, order.Status)
		require.NotNil(t, order.DispatchedItems)
		assert.True(t, order.DispatchedItems["Mango Pulp"].TotalBags().Equal(d(200)))
	})

	t.Run("drains chambers stored at different ratings", func(t *testing.T) {
		record, err := ledger.NewStockRecord("Mango Pulp", ledger.CategoryPacked, "kg", []ledger.PackageConfig{
			{Size: d(10), Unit: "kg", PacketsPerBag: 4},
		})
		require.NoError(t, err)
		require.NoError(t, record.MergeEntry("A", 4, d(120), 4))
		require.NoError(t, record.MergeEntry("B", 3, d(80), 4))
		record.ClearDomainEvents()

		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(120)}, {ChamberID: "B", Quantity: d(80)}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(200)}})
		plans := planFor(t, record, order)

		err = NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		require.NoError(t, err)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.IsZero())
		assert.True(t, record.EntryFor("B", 3).QuantityBags.IsZero())
		assert.Equal(t, StatusInProgress, order.Status)
	})

	t.Run("insufficient stock rejects the whole order untouched", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(150)}, {ChamberID: "B", Quantity: d(100)}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(250)}})
		plans := planFor(t, record, order)

		err := NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.Equal(d(120)), "ledger must stay at 120")
		assert.True(t, record.EntryFor("B", 4).QuantityBags.Equal(d(80)), "ledger must stay at 80")
		assert.Equal(t, StatusPending, order.Status)
		assert.Nil(t, order.DispatchedItems)
	})

	t.Run("unknown chamber fails without partial deduction", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(10)}, {ChamberID: "Z", Quantity: d(10)}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(20)}})
		plans := planFor(t, record, order)

		err := NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		assert.ErrorIs(t, err, shared.ErrChamberNotFound)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.Equal(d(120)))
	})

	t.Run("missing package config is a hard failure for packed records", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(10)}},
			[]ledger.PackageLine{{Size: d(99), Unit: "kg", Quantity: d(10)}})
		plans := planFor(t, record, order)

		err := NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		assert.ErrorIs(t, err, shared.ErrMissingPackageConfig)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.Equal(d(120)))
	})

	t.Run("missing record is a hard failure", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(10)}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(10)}})
		plans := planFor(t, record, order)

		err := NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{})

		assert.ErrorIs(t, err, shared.ErrNoStockForProduct)
	})

	t.Run("truck capacity bounds the allocation", func(t *testing.T) {
		record := mangoRecord(t)
		order, err := NewOrder("Sharma Traders", TruckDetail{Number: "MH12AB1234", CapacityBags: d(100)},
			[]ProductLine{{Name: "Mango Pulp", Chambers: []ledger.ChamberDemand{{ChamberID: "A", Quantity: d(120)}}}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(120)}})
		require.NoError(t, err)
		plans := planFor(t, record, order)

		err = NewApplier().Apply(order, plans, map[string]*ledger.StockRecord{"Mango Pulp": record})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_TRUCK_CAPACITY", domainErr.Code)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.Equal(d(120)))
	})

	t.Run("product line without a plan is skipped", func(t *testing.T) {
		record := mangoRecord(t)
		order := mangoOrder(t,
			[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(10)}},
			[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(10)}})

		err := NewApplier().Apply(order, map[string]ledger.AllocationPlan{}, map[string]*ledger.StockRecord{"Mango Pulp": record})

		require.NoError(t, err)
		assert.Equal(t, StatusInProgress, order.Status)
		assert.True(t, record.EntryFor("A", 4).QuantityBags.Equal(d(120)))
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	order := mangoOrder(t,
		[]ledger.ChamberDemand{{ChamberID: "A", Quantity: d(10)}},
		[]ledger.PackageLine{{Size: d(10), Unit: "kg", Quantity: d(10)}})

	t.Run("starts pending", func(t *testing.T) {
		assert.Equal(t, StatusPending, order.Status)
	})

	t.Run("cannot complete before allocation", func(t *testing.T) {
		require.Error(t, order.Complete())
	})

	t.Run("allocation moves to in-progress", func(t *testing.T) {
		require.NoError(t, order.RecordAllocation(map[string]ledger.AllocationPlan{}))
		assert.Equal(t, StatusInProgress, order.Status)
	})

	t.Run("allocation cannot be recorded twice", func(t *testing.T) {
		require.Error(t, order.RecordAllocation(map[string]ledger.AllocationPlan{}))
	})

	t.Run("completes from in-progress", func(t *testing.T) {
		require.NoError(t, order.Complete())
		assert.Equal(t, StatusCompleted, order.Status)
	})
}

func TestNewOrder_Validation(t *testing.T) {
	t.Run("requires customer name", func(t *testing.T) {
		_, err := NewOrder("  ", TruckDetail{}, []ProductLine{{Name: "X"}}, nil)
		require.Error(t, err)
	})

	t.Run("requires at least one product line", func(t *testing.T) {
		_, err := NewOrder("Sharma Traders", TruckDetail{}, nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects blank product line names", func(t *testing.T) {
		_, err := NewOrder("Sharma Traders", TruckDetail{}, []ProductLine{{Name: "  "}}, nil)
		require.Error(t, err)
	})
}
