package sheet

import "strings"

// Kind identifies what entity an import row describes.
type Kind string

const (
	KindVendor        Kind = "vendor"
	KindMaterialOrder Kind = "material_order"
	KindProduction    Kind = "production"
	KindChamberStock  Kind = "chamber_stock"
	KindDispatch      Kind = "dispatch"
)

// Row is one raw import row: loosely-typed field values keyed by canonical
// column name, plus enough location information to report errors against the
// original workbook.
type Row struct {
	Kind       Kind
	SheetName  string
	LineNumber int
	Fields     map[string]string
}

// Get returns the trimmed value of a column, or "" when absent.
func (r *Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// Has reports whether the column holds a non-blank value.
func (r *Row) Has(column string) bool {
	return r.Get(column) != ""
}
