package ledger

import (
	"fmt"
	"strings"

	"github.com/coldstore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChamberDemand is one chamber's requested bag quantity from an order line.
type ChamberDemand struct {
	ChamberID string          `json:"chamber_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// PackageLine is one ordered package row: how many packages of a given size.
type PackageLine struct {
	Size     decimal.Decimal `json:"size"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PacketSpec describes the packet resolution for a plan entry.
type PacketSpec struct {
	Size          decimal.Decimal `json:"size"`
	Unit          string          `json:"unit"`
	PacketsPerBag int             `json:"packets_per_bag"`
}

// PlanEntry is the allocation computed for one package-size/rating key.
// Invariant: the sum of ByChamber values equals TotalBags exactly.
type PlanEntry struct {
	TotalBags    decimal.Decimal            `json:"total_bags"`
	TotalPackets decimal.Decimal            `json:"total_packets"`
	ByChamber    map[string]decimal.Decimal `json:"by_chamber"`
	Packet       PacketSpec                 `json:"packet"`
	Rating       int                        `json:"rating"`
}

// AllocationPlan maps "{size}-{unit}-{rating}" keys to plan entries.
// Invariant: the sum of all entries' TotalBags equals the sum of the
// requested chamber quantities; no bag is created or lost in the split.
type AllocationPlan map[string]PlanEntry

// TotalBags returns the total bag count across all plan entries.
func (p AllocationPlan) TotalBags() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range p {
		total = total.Add(entry.TotalBags)
	}
	return total
}

// PlanKey builds the plan entry key for a package size, unit and rating.
func PlanKey(size decimal.Decimal, unit string, rating int) string {
	return fmt.Sprintf("%s-%s-%d", size.String(), strings.ToLower(unit), rating)
}

// AllocationRequest is the ephemeral input to the planner: one product's
// ordered chamber breakdown plus the order's package breakdown.
type AllocationRequest struct {
	ProductName string          `json:"product_name"`
	Chambers    []ChamberDemand `json:"chambers"`
	Packages    []PackageLine   `json:"packages"`
}

// PlanAllocation distributes the requested chamber quantities across the
// ordered package rows proportionally, with the last package row absorbing
// the floor-rounding remainder so that no bag is created or lost.
//
// The record supplies rating traceability (a chamber's bags carry one rating
// at a time) and packets-per-bag resolution; a nil record is a hard failure
// because allocation without chamber stock is meaningless.
func PlanAllocation(record *StockRecord, req AllocationRequest) (AllocationPlan, error) {
	if record == nil {
		return nil, shared.ErrNoStockForProduct
	}

	one := decimal.NewFromInt(1)

	// Chambers with zero demand contribute nothing to the split.
	chambers := make([]ChamberDemand, 0, len(req.Chambers))
	totalRowBags := decimal.Zero
	for _, ch := range req.Chambers {
		if ch.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		chambers = append(chambers, ch)
		totalRowBags = totalRowBags.Add(ch.Quantity)
	}

	plan := make(AllocationPlan)
	if totalRowBags.IsZero() {
		// Nothing to allocate; the caller decides whether an empty plan is
		// acceptable for this order line.
		return plan, nil
	}

	// Zero-quantity package rows are skipped entirely: they produce no plan
	// entry and do not participate in the proportional split.
	lines := make([]PackageLine, 0, len(req.Packages))
	totalPackageQty := decimal.Zero
	for _, line := range req.Packages {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		lines = append(lines, line)
		totalPackageQty = totalPackageQty.Add(line.Quantity)
	}
	if len(lines) == 0 {
		return plan, nil
	}

	// remaining[i] tracks how many bags chamber i still has to hand out.
	remaining := make([]decimal.Decimal, len(chambers))
	for i, ch := range chambers {
		remaining[i] = ch.Quantity
	}

	remainingPackageQty := totalPackageQty
	remainingRowBags := totalRowBags

	for li, line := range lines {
		var pkgBags decimal.Decimal
		if li == len(lines)-1 {
			// The last row absorbs whatever is left, guaranteeing the running
			// total equals totalRowBags despite floor rounding above.
			pkgBags = remainingRowBags
		} else {
			// Multiply before dividing: an exact quotient must survive the
			// division's fixed precision so the floor lands on it.
			pkgBags = line.Quantity.Mul(remainingRowBags).Div(remainingPackageQty).Floor()
			if pkgBags.GreaterThan(remainingRowBags) {
				pkgBags = remainingRowBags
			}
		}
		remainingPackageQty = remainingPackageQty.Sub(line.Quantity)
		remainingRowBags = remainingRowBags.Sub(pkgBags)

		if pkgBags.IsZero() {
			continue
		}

		// Distribute pkgBags across chambers proportionally to each chamber's
		// share of the total, then walk the chambers round-robin correcting
		// one bag at a time until the shares sum to pkgBags exactly.
		shares := make([]decimal.Decimal, len(chambers))
		assigned := decimal.Zero
		for i, ch := range chambers {
			share := ch.Quantity.Mul(pkgBags).Div(totalRowBags).Floor()
			if share.GreaterThan(remaining[i]) {
				share = remaining[i]
			}
			shares[i] = share
			assigned = assigned.Add(share)
		}
		diff := pkgBags.Sub(assigned)
		for !diff.IsZero() {
			moved := false
			for i := range chambers {
				if diff.IsZero() {
					break
				}
				if diff.IsPositive() && remaining[i].GreaterThan(shares[i]) {
					shares[i] = shares[i].Add(one)
					diff = diff.Sub(one)
					moved = true
				} else if diff.IsNegative() && shares[i].IsPositive() {
					shares[i] = shares[i].Sub(one)
					diff = diff.Add(one)
					moved = true
				}
			}
			if !moved {
				return nil, shared.NewDomainError("ALLOCATION_DRIFT",
					fmt.Sprintf("Cannot reconcile %s surplus bags for package %s%s", diff.String(), line.Size.String(), line.Unit))
			}
		}
		for i := range chambers {
			remaining[i] = remaining[i].Sub(shares[i])
		}

		// Each chamber carries its own ledger rating, so a single package row
		// may fan out into one plan entry per rating. Summing each chamber's
		// share into its entry keeps the line total at pkgBags exactly.
		for i, ch := range chambers {
			if shares[i].IsZero() {
				continue
			}
			rating := chamberRating(record, ch.ChamberID)
			key := PlanKey(line.Size, line.Unit, rating)
			entry, ok := plan[key]
			if !ok {
				packetsPerBag := record.ResolvePacketsPerBag(line.Size, line.Unit, ch.ChamberID, rating)
				entry = PlanEntry{
					TotalBags:    decimal.Zero,
					TotalPackets: decimal.Zero,
					ByChamber:    make(map[string]decimal.Decimal),
					Packet:       PacketSpec{Size: line.Size, Unit: line.Unit, PacketsPerBag: packetsPerBag},
					Rating:       rating,
				}
			}
			entry.ByChamber[ch.ChamberID] = entry.ByChamber[ch.ChamberID].Add(shares[i])
			entry.TotalBags = entry.TotalBags.Add(shares[i])
			entry.TotalPackets = entry.TotalBags.Mul(decimal.NewFromInt(int64(entry.Packet.PacketsPerBag)))
			plan[key] = entry
		}
	}

	return plan, nil
}

// chamberRating reads the chamber's stored rating from the ledger. A chamber
// absent from the ledger falls back to the record's first entry so the plan
// key stays well-formed; application then fails chamber-not-found as usual.
func chamberRating(record *StockRecord, chamberID string) int {
	if rating, ok := record.RatingFor(chamberID); ok {
		return rating
	}
	if len(record.Entries) > 0 {
		return record.Entries[0].Rating
	}
	return MinRating
}
