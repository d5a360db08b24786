package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, file.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := file.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			require.NoError(t, file.SetSheetRow(name, cell, &values))
		}
	}
	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	t.Run("maps sheets to kinds and headers to canonical fields", func(t *testing.T) {
		buf := buildWorkbook(t, map[string][][]string{
			"Chamber Stock": {
				{"Product", "Category", "Chamber", "Grade", "Qty", "Packets Per Bag"},
				{"Mango Pulp", "packed", "A", "4", "120", "4"},
				{"Mango Pulp", "packed", "B", "4", "80", "4"},
			},
			"Vendors": {
				{"Name", "Phone"},
				{"Mehta Traders", "9876500000"},
			},
		})

		rows, err := ReadWorkbook(buf)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		var stock, vendors []Row
		for _, row := range rows {
			switch row.Kind {
			case KindChamberStock:
				stock = append(stock, row)
			case KindVendor:
				vendors = append(vendors, row)
			}
		}
		require.Len(t, stock, 2)
		require.Len(t, vendors, 1)

		first := stock[0]
		assert.Equal(t, "Mango Pulp", first.Get("product_name"))
		assert.Equal(t, "A", first.Get("chamber_id"))
		assert.Equal(t, "4", first.Get("rating"))
		assert.Equal(t, "120", first.Get("quantity"))
		assert.Equal(t, 2, first.LineNumber)
		assert.Equal(t, 3, stock[1].LineNumber)

		assert.Equal(t, "Mehta Traders", vendors[0].Get("name"))
	})

	t.Run("ignores unknown sheets and blank rows", func(t *testing.T) {
		buf := buildWorkbook(t, map[string][][]string{
			"Notes": {
				{"anything"},
				{"operator scribbles"},
			},
			"Dispatch": {
				{"Customer", "Product", "Qty"},
				{"", "", ""},
				{"Acme Foods", "Mango Pulp", "50"},
			},
		})

		rows, err := ReadWorkbook(buf)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, KindDispatch, rows[0].Kind)
		assert.Equal(t, "Acme Foods", rows[0].Get("customer_name"))
		assert.Equal(t, 3, rows[0].LineNumber)
	})

	t.Run("rejects workbooks with no recognized data", func(t *testing.T) {
		buf := buildWorkbook(t, map[string][][]string{
			"Notes": {{"heading"}},
		})
		_, err := ReadWorkbook(buf)
		assert.Error(t, err)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		_, err := ReadWorkbook(bytes.NewBufferString("not a workbook"))
		assert.Error(t, err)
	})
}
