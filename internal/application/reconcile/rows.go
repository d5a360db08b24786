package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coldstore/backend/internal/domain/ledger"
	"github.com/coldstore/backend/internal/infrastructure/sheet"
)

// VendorRow is one vendor sheet row after parsing.
type VendorRow struct {
	Ref     string
	Name    string
	Phone   string
	Address string
	Line    sheet.Row
}

// MaterialOrderRow is one raw-material intake row after parsing.
type MaterialOrderRow struct {
	Ref           string
	VendorName    string
	MaterialName  string
	Quantity      decimal.Decimal
	Unit          string
	ArrivalDate   time.Time
	TruckNumber   string
	DriverName    string
	ChallanNumber string
	ChallanWeight decimal.Decimal
	Line          sheet.Row
}

// ProductionRow is one production run row after parsing. OrderRef optionally
// names the intake row (by its batch-local ref) this run consumed.
type ProductionRow struct {
	Ref          string
	OrderRef     string
	MaterialName string
	ProductName  string
	OutputBags   decimal.Decimal
	ProducedOn   time.Time
	Line         sheet.Row
}

// ChamberStockRow is one chamber stock row after parsing. Quantity is a
// signed delta merged into the ledger with sum semantics.
type ChamberStockRow struct {
	ProductName   string
	Category      ledger.Category
	Unit          string
	ChamberID     string
	Rating        int
	Quantity      decimal.Decimal
	PacketsPerBag int
	PackageSize   decimal.Decimal
	PackageUnit   string
	Line          sheet.Row
}

// DispatchRow is one dispatch order row after parsing.
type DispatchRow struct {
	CustomerName  string
	ProductName   string
	Chambers      []ledger.ChamberDemand
	Packages      []ledger.PackageLine
	TruckNumber   string
	DriverName    string
	TruckCapacity decimal.Decimal
	Line          sheet.Row
}

// Batch is the typed form of one import workbook, grouped by row kind in
// workbook order.
type Batch struct {
	Vendors        []VendorRow
	MaterialOrders []MaterialOrderRow
	Productions    []ProductionRow
	ChamberStock   []ChamberStockRow
	Dispatches     []DispatchRow
}

// Size returns the total number of rows in the batch.
func (b *Batch) Size() int {
	return len(b.Vendors) + len(b.MaterialOrders) + len(b.Productions) + len(b.ChamberStock) + len(b.Dispatches)
}

var (
	one  = decimal.NewFromInt(1)
	five = decimal.NewFromInt(5)
)

func vendorRules() []sheet.FieldRule {
	return []sheet.FieldRule{
		sheet.Field("name").Required().MaxLength(255).Build(),
		sheet.Field("phone").MaxLength(32).Build(),
		sheet.Field("address").MaxLength(512).Build(),
	}
}

func materialOrderRules() []sheet.FieldRule {
	return []sheet.FieldRule{
		sheet.Field("vendor_name").Required().Build(),
		sheet.Field("material_name").Required().Build(),
		sheet.Field("quantity").Required().Decimal().Min(decimal.Zero).Build(),
		sheet.Field("arrival_date").Required().Date().Build(),
		sheet.Field("challan_weight").Decimal().Min(decimal.Zero).Build(),
	}
}

func productionRules() []sheet.FieldRule {
	return []sheet.FieldRule{
		sheet.Field("product_name").Required().Build(),
		sheet.Field("quantity").Required().Decimal().Min(decimal.Zero).Build(),
		sheet.Field("date").Required().Date().Build(),
	}
}

func chamberStockRules() []sheet.FieldRule {
	return []sheet.FieldRule{
		sheet.Field("product_name").Required().Build(),
		sheet.Field("chamber_id").Required().Build(),
		sheet.Field("rating").Int().Min(one).Max(five).Build(),
		sheet.Field("quantity").Required().Decimal().Build(),
		sheet.Field("packets_per_bag").Int().Min(one).Build(),
		sheet.Field("package_size").Decimal().Min(decimal.Zero).Build(),
	}
}

func dispatchRules() []sheet.FieldRule {
	return []sheet.FieldRule{
		sheet.Field("customer_name").Required().Build(),
		sheet.Field("product_name").Required().Build(),
		sheet.Field("chamber_breakdown").Required().Build(),
		sheet.Field("package_breakdown").Required().Build(),
		sheet.Field("truck_capacity").Decimal().Min(decimal.Zero).Build(),
	}
}

var rulesByKind = map[sheet.Kind]func() []sheet.FieldRule{
	sheet.KindVendor:        vendorRules,
	sheet.KindMaterialOrder: materialOrderRules,
	sheet.KindProduction:    productionRules,
	sheet.KindChamberStock:  chamberStockRules,
	sheet.KindDispatch:      dispatchRules,
}

// ParseBatch validates and types every workbook row, collecting every
// violation across the whole batch. A batch with any violation parses to
// nil: the caller gets the full error list and nothing else.
func ParseBatch(rows []sheet.Row, maxErrors int) (*Batch, *sheet.ErrorCollection) {
	errs := sheet.NewErrorCollection(maxErrors)

	for i := range rows {
		if rules, ok := rulesByKind[rows[i].Kind]; ok {
			sheet.ValidateRow(&rows[i], rules(), errs)
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}

	batch := &Batch{}
	for i := range rows {
		row := rows[i]
		switch row.Kind {
		case sheet.KindVendor:
			batch.Vendors = append(batch.Vendors, parseVendorRow(row))
		case sheet.KindMaterialOrder:
			batch.MaterialOrders = append(batch.MaterialOrders, parseMaterialOrderRow(row))
		case sheet.KindProduction:
			batch.Productions = append(batch.Productions, parseProductionRow(row))
		case sheet.KindChamberStock:
			batch.ChamberStock = append(batch.ChamberStock, parseChamberStockRow(row, errs))
		case sheet.KindDispatch:
			if parsed, ok := parseDispatchRow(row, errs); ok {
				batch.Dispatches = append(batch.Dispatches, parsed)
			}
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return batch, errs
}

func parseVendorRow(row sheet.Row) VendorRow {
	return VendorRow{
		Ref:     row.Get("ref"),
		Name:    row.Get("name"),
		Phone:   row.Get("phone"),
		Address: row.Get("address"),
		Line:    row,
	}
}

func parseMaterialOrderRow(row sheet.Row) MaterialOrderRow {
	arrival, _ := sheet.ParseDate(row.Get("arrival_date"))
	return MaterialOrderRow{
		Ref:           row.Get("ref"),
		VendorName:    row.Get("vendor_name"),
		MaterialName:  row.Get("material_name"),
		Quantity:      mustDecimal(row.Get("quantity")),
		Unit:          defaultString(row.Get("unit"), "kg"),
		ArrivalDate:   arrival,
		TruckNumber:   row.Get("truck_number"),
		DriverName:    row.Get("driver_name"),
		ChallanNumber: row.Get("challan_number"),
		ChallanWeight: mustDecimal(row.Get("challan_weight")),
		Line:          row,
	}
}

func parseProductionRow(row sheet.Row) ProductionRow {
	producedOn, _ := sheet.ParseDate(row.Get("date"))
	return ProductionRow{
		Ref:          row.Get("ref"),
		OrderRef:     row.Get("order_ref"),
		MaterialName: row.Get("material_name"),
		ProductName:  row.Get("product_name"),
		OutputBags:   mustDecimal(row.Get("quantity")),
		ProducedOn:   producedOn,
		Line:         row,
	}
}

func parseChamberStockRow(row sheet.Row, errs *sheet.ErrorCollection) ChamberStockRow {
	category := ledger.Category(strings.ToLower(defaultString(row.Get("category"), string(ledger.CategoryPacked))))
	if !category.IsValid() {
		errs.Add(sheet.NewRowError(row.SheetName, row.LineNumber, "category", sheet.ErrCodeValidation,
			fmt.Sprintf("unknown category %q", row.Get("category"))))
	}
	return ChamberStockRow{
		ProductName:   row.Get("product_name"),
		Category:      category,
		Unit:          defaultString(row.Get("unit"), "bag"),
		ChamberID:     row.Get("chamber_id"),
		Rating:        intField(row.Get("rating"), 1),
		Quantity:      mustDecimal(row.Get("quantity")),
		PacketsPerBag: intField(row.Get("packets_per_bag"), 0),
		PackageSize:   mustDecimal(row.Get("package_size")),
		PackageUnit:   row.Get("package_unit"),
		Line:          row,
	}
}

func parseDispatchRow(row sheet.Row, errs *sheet.ErrorCollection) (DispatchRow, bool) {
	chambers, err := ParseChamberBreakdown(row.Get("chamber_breakdown"))
	if err != nil {
		errs.Add(sheet.NewRowError(row.SheetName, row.LineNumber, "chamber_breakdown", sheet.ErrCodeValidation, err.Error()))
	}
	packages, pkgErr := ParsePackageBreakdown(row.Get("package_breakdown"))
	if pkgErr != nil {
		errs.Add(sheet.NewRowError(row.SheetName, row.LineNumber, "package_breakdown", sheet.ErrCodeValidation, pkgErr.Error()))
	}
	if err != nil || pkgErr != nil {
		return DispatchRow{}, false
	}
	return DispatchRow{
		CustomerName:  row.Get("customer_name"),
		ProductName:   row.Get("product_name"),
		Chambers:      chambers,
		Packages:      packages,
		TruckNumber:   row.Get("truck_number"),
		DriverName:    row.Get("driver_name"),
		TruckCapacity: mustDecimal(row.Get("truck_capacity")),
		Line:          row,
	}, true
}

var sizeUnitPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([A-Za-z]+)$`)

// ParseChamberBreakdown parses "A:90; B:60" into chamber demands.
func ParseChamberBreakdown(raw string) ([]ledger.ChamberDemand, error) {
	var demands []ledger.ChamberDemand
	for _, token := range splitBreakdown(raw) {
		chamber, qty, ok := strings.Cut(token, ":")
		if !ok {
			return nil, fmt.Errorf("malformed chamber entry %q, want \"chamber:bags\"", token)
		}
		quantity, err := decimal.NewFromString(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("malformed bag count in %q", token)
		}
		if quantity.IsNegative() {
			return nil, fmt.Errorf("negative bag count in %q", token)
		}
		demands = append(demands, ledger.ChamberDemand{
			ChamberID: strings.TrimSpace(chamber),
			Quantity:  quantity,
		})
	}
	if len(demands) == 0 {
		return nil, fmt.Errorf("empty chamber breakdown")
	}
	return demands, nil
}

// ParsePackageBreakdown parses "10kg:150; 25kg:50" into package lines.
func ParsePackageBreakdown(raw string) ([]ledger.PackageLine, error) {
	var lines []ledger.PackageLine
	for _, token := range splitBreakdown(raw) {
		spec, qty, ok := strings.Cut(token, ":")
		if !ok {
			return nil, fmt.Errorf("malformed package entry %q, want \"size+unit:count\"", token)
		}
		match := sizeUnitPattern.FindStringSubmatch(strings.TrimSpace(spec))
		if match == nil {
			return nil, fmt.Errorf("malformed package size %q", spec)
		}
		size, err := decimal.NewFromString(match[1])
		if err != nil {
			return nil, fmt.Errorf("malformed package size %q", spec)
		}
		quantity, err := decimal.NewFromString(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("malformed package count in %q", token)
		}
		if quantity.IsNegative() {
			return nil, fmt.Errorf("negative package count in %q", token)
		}
		lines = append(lines, ledger.PackageLine{Size: size, Unit: match[2], Quantity: quantity})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty package breakdown")
	}
	return lines, nil
}

func splitBreakdown(raw string) []string {
	var tokens []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' }) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

// mustDecimal parses a decimal already vetted by field rules; blank means zero.
// intField parses a whole-number cell, keeping the fallback for empty or
// malformed input. The Int() rules in rulesByKind reject malformed cells
// before any row reaches a parse function, so the fallback only covers
// genuinely empty cells here.
func intField(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func mustDecimal(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func defaultString(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return raw
}
