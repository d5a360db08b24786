package dispatch

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coldstore/backend/internal/domain/dispatch"
	"github.com/coldstore/backend/internal/domain/ledger"
)

// ChamberDemandRequest is one chamber's share of a requested product line.
type ChamberDemandRequest struct {
	ChamberID string          `json:"chamber_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ProductLineRequest is one requested product with its chamber breakdown.
type ProductLineRequest struct {
	Name     string                 `json:"name"`
	Chambers []ChamberDemandRequest `json:"chambers"`
}

// PackageLineRequest is one ordered package row.
type PackageLineRequest struct {
	Size     decimal.Decimal `json:"size"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TruckRequest carries the vehicle details for a dispatch.
type TruckRequest struct {
	Number       string          `json:"number"`
	DriverName   string          `json:"driver_name,omitempty"`
	CapacityBags decimal.Decimal `json:"capacity_bags,omitempty"`
}

// CreateDispatchRequest creates and applies a dispatch order in one step.
type CreateDispatchRequest struct {
	CustomerName string               `json:"customer_name"`
	Truck        TruckRequest         `json:"truck"`
	Products     []ProductLineRequest `json:"products"`
	Packages     []PackageLineRequest `json:"packages"`
}

// OrderResponse is the API view of a dispatch order.
type OrderResponse struct {
	ID              uuid.UUID                        `json:"id"`
	CustomerName    string                           `json:"customer_name"`
	Status          string                           `json:"status"`
	Truck           dispatch.TruckDetail             `json:"truck"`
	Products        []ProductLineResponse            `json:"products"`
	Packages        []ledger.PackageLine             `json:"packages"`
	DispatchedItems map[string]ledger.AllocationPlan `json:"dispatched_items,omitempty"`
	TotalBags       decimal.Decimal                  `json:"total_bags"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
}

// ProductLineResponse is the API view of one product line.
type ProductLineResponse struct {
	Name     string                 `json:"name"`
	Chambers []ledger.ChamberDemand `json:"chambers"`
}

// ToOrderResponse converts a dispatch order aggregate to its API view.
func ToOrderResponse(order *dispatch.Order) OrderResponse {
	products := make([]ProductLineResponse, 0, len(order.Products))
	for _, line := range order.Products {
		products = append(products, ProductLineResponse{Name: line.Name, Chambers: line.Chambers})
	}
	return OrderResponse{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		Status:          string(order.Status),
		Truck:           order.Truck,
		Products:        products,
		Packages:        order.Packages,
		DispatchedItems: order.DispatchedItems,
		TotalBags:       order.TotalRequestedBags(),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (r *CreateDispatchRequest) toDomain() (*dispatch.Order, error) {
	products := make([]dispatch.ProductLine, 0, len(r.Products))
	for _, line := range r.Products {
		chambers := make([]ledger.ChamberDemand, 0, len(line.Chambers))
		for _, ch := range line.Chambers {
			chambers = append(chambers, ledger.ChamberDemand{ChamberID: ch.ChamberID, Quantity: ch.Quantity})
		}
		products = append(products, dispatch.ProductLine{Name: line.Name, Chambers: chambers})
	}
	packages := make([]ledger.PackageLine, 0, len(r.Packages))
	for _, pkg := range r.Packages {
		packages = append(packages, ledger.PackageLine{Size: pkg.Size, Unit: pkg.Unit, Quantity: pkg.Quantity})
	}
	truck := dispatch.TruckDetail{
		Number:       r.Truck.Number,
		DriverName:   r.Truck.DriverName,
		CapacityBags: r.Truck.CapacityBags,
	}
	return dispatch.NewOrder(r.CustomerName, truck, products, packages)
}
