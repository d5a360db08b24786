package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetKinds maps workbook sheet names (lowercased) to row kinds. Operators
// name their sheets inconsistently; the aliases absorb the common variants.
var sheetKinds = map[string]Kind{
	"vendors":         KindVendor,
	"vendor":          KindVendor,
	"material orders": KindMaterialOrder,
	"material_orders": KindMaterialOrder,
	"intake":          KindMaterialOrder,
	"productions":     KindProduction,
	"production":      KindProduction,
	"chamber stock":   KindChamberStock,
	"chamber_stock":   KindChamberStock,
	"stock":           KindChamberStock,
	"dispatches":      KindDispatch,
	"dispatch":        KindDispatch,
	"orders":          KindDispatch,
}

// headerAliases maps spreadsheet column headings (lowercased, whitespace
// collapsed) to canonical field names.
var headerAliases = map[string]string{
	"ref":               "ref",
	"reference":         "ref",
	"row id":            "ref",
	"name":              "name",
	"vendor":            "vendor_name",
	"vendor name":       "vendor_name",
	"supplier":          "vendor_name",
	"phone":             "phone",
	"address":           "address",
	"material":          "material_name",
	"material name":     "material_name",
	"product":           "product_name",
	"product name":      "product_name",
	"item":              "product_name",
	"quantity":          "quantity",
	"qty":               "quantity",
	"bags":              "quantity",
	"unit":              "unit",
	"arrival":           "arrival_date",
	"arrival date":      "arrival_date",
	"date":              "date",
	"produced on":       "date",
	"chamber":           "chamber_id",
	"chamber id":        "chamber_id",
	"rating":            "rating",
	"grade":             "rating",
	"packets":           "packets_per_bag",
	"packets per bag":   "packets_per_bag",
	"category":          "category",
	"size":              "package_size",
	"package size":      "package_size",
	"package unit":      "package_unit",
	"packages":          "package_quantity",
	"package qty":       "package_quantity",
	"customer":          "customer_name",
	"customer name":     "customer_name",
	"truck":             "truck_number",
	"truck number":      "truck_number",
	"truck no":          "truck_number",
	"driver":            "driver_name",
	"capacity":          "truck_capacity",
	"challan":           "challan_number",
	"challan no":        "challan_number",
	"challan weight":    "challan_weight",
	"output bags":       "quantity",
	"intake ref":        "order_ref",
	"order ref":         "order_ref",
	"chambers":          "chamber_breakdown",
	"chamber breakdown": "chamber_breakdown",
	"package breakdown": "package_breakdown",
}

// ReadWorkbook parses an import workbook into loosely-typed rows, one slice
// entry per data row, preserving sheet order. Unknown sheets are ignored so a
// workbook can carry operator notes without breaking the import.
func ReadWorkbook(reader io.Reader) ([]Row, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var result []Row
	for _, sheetName := range sheets {
		kind, ok := sheetKinds[normalizeHeading(sheetName)]
		if !ok {
			continue
		}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}
		if len(rows) < 2 {
			continue // header only, or empty
		}

		columns := mapColumns(rows[0])
		for index := 1; index < len(rows); index++ {
			fields := make(map[string]string, len(columns))
			blank := true
			for field, col := range columns {
				value := readCell(rows[index], col)
				if value != "" {
					blank = false
				}
				fields[field] = value
			}
			if blank {
				continue
			}
			result = append(result, Row{
				Kind:       kind,
				SheetName:  sheetName,
				LineNumber: index + 1,
				Fields:     fields,
			})
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("workbook contains no recognized data rows")
	}
	return result, nil
}

// mapColumns resolves header cells to canonical field names. Unrecognized
// headings are kept verbatim (lowercased) so downstream code can still reach
// custom columns.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		heading := normalizeHeading(cell)
		if heading == "" {
			continue
		}
		if canonical, ok := headerAliases[heading]; ok {
			heading = canonical
		}
		if _, taken := columns[heading]; !taken {
			columns[heading] = i
		}
	}
	return columns
}

func normalizeHeading(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func readCell(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}
