package dispatch

import (
	"fmt"

	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Applier deducts an allocation plan from the stock ledger. It is a pure
// domain service: the caller fetches the touched records with FindForUpdate,
// invokes Apply, and persists records and order inside the same transaction,
// so either both survive or neither does.
type Applier struct{}

// NewApplier creates a dispatch applier.
func NewApplier() Applier {
	return Applier{}
}

// Apply deducts every chamber/bag pair of every plan entry from the matching
// locked stock record, then freezes the plans on the order. All deductions are
// made in memory before anything is saved; any failure leaves the caller free
// to roll back with no partial state persisted.
func (Applier) Apply(order *Order, plans map[string]ledger.AllocationPlan, records map[string]*ledger.StockRecord) error {
	if order == nil {
		return shared.NewDomainError("INVALID_ORDER", "Dispatch order is required")
	}

	if order.Truck.CapacityBags.IsPositive() {
		total := decimal.Zero
		for _, plan := range plans {
			total = total.Add(plan.TotalBags())
		}
		if total.GreaterThan(order.Truck.CapacityBags) {
			return shared.NewDomainError("EXCEEDS_TRUCK_CAPACITY",
				fmt.Sprintf("Allocated %s bags exceed truck capacity %s", total.String(), order.Truck.CapacityBags.String()))
		}
	}

	// Verify everything before deducting anything, so a failure anywhere in
	// the order leaves every record exactly as it was loaded.
	type deduction struct {
		record    *ledger.StockRecord
		chamberID string
		rating    int
		bags      decimal.Decimal
	}
	deductions := make([]deduction, 0)
	pending := make(map[*ledger.StockEntry]decimal.Decimal)

	for i := range order.Products {
		productName := order.Products[i].Name
		plan, ok := plans[productName]
		if !ok {
			continue // nothing allocated for this line
		}
		record, ok := records[productName]
		if !ok || record == nil {
			return shared.ErrNoStockForProduct
		}

		for _, entry := range plan {
			if record.Category == ledger.CategoryPacked && record.PackageFor(entry.Packet.Size, entry.Packet.Unit) == nil {
				return shared.ErrMissingPackageConfig
			}
			for chamberID, bags := range entry.ByChamber {
				stock := record.EntryFor(chamberID, entry.Rating)
				if stock == nil {
					return shared.ErrChamberNotFound
				}
				claimed := pending[stock].Add(bags)
				if stock.QuantityBags.LessThan(claimed) {
					return shared.ErrInsufficientStock
				}
				pending[stock] = claimed
				deductions = append(deductions, deduction{record: record, chamberID: chamberID, rating: entry.Rating, bags: bags})
			}
		}
	}

	for _, ded := range deductions {
		if err := ded.record.Deduct(ded.chamberID, ded.rating, ded.bags); err != nil {
			return err
		}
	}

	return order.RecordAllocation(plans)
}
