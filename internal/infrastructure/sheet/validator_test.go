package sheet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRow(fields map[string]string) *Row {
	return &Row{Kind: KindChamberStock, SheetName: "Chamber Stock", LineNumber: 7, Fields: fields}
}

func TestValidateRow(t *testing.T) {
	rules := []FieldRule{
		Field("product_name").Required().Build(),
		Field("quantity").Required().Decimal().Min(decimal.Zero).Build(),
		Field("rating").Int().Min(decimal.NewFromInt(1)).Max(decimal.NewFromInt(5)).Build(),
		Field("date").Date().Build(),
	}

	t.Run("valid row passes", func(t *testing.T) {
		row := testRow(map[string]string{
			"product_name": "Mango Pulp",
			"quantity":     "120.5",
			"rating":       "4",
			"date":         "2026-03-15",
		})
		errs := NewErrorCollection(50)
		ValidateRow(row, rules, errs)
		assert.False(t, errs.HasErrors())
	})

	t.Run("collects every violation instead of stopping at the first", func(t *testing.T) {
		row := testRow(map[string]string{
			"product_name": "",
			"quantity":     "-3",
			"rating":       "9",
			"date":         "tomorrow",
		})
		errs := NewErrorCollection(50)
		ValidateRow(row, rules, errs)
		require.Equal(t, 4, errs.TotalCount())

		codes := make(map[string]bool)
		for _, e := range errs.Errors() {
			codes[e.Code] = true
			assert.Equal(t, "Chamber Stock", e.Sheet)
			assert.Equal(t, 7, e.Row)
		}
		assert.True(t, codes[ErrCodeRequiredField])
		assert.True(t, codes[ErrCodeInvalidRange])
		assert.True(t, codes[ErrCodeInvalidType])
	})

	t.Run("optional empty field is skipped", func(t *testing.T) {
		row := testRow(map[string]string{
			"product_name": "Mango Pulp",
			"quantity":     "10",
		})
		errs := NewErrorCollection(50)
		ValidateRow(row, rules, errs)
		assert.False(t, errs.HasErrors())
	})

	t.Run("malformed decimal reported against its column", func(t *testing.T) {
		row := testRow(map[string]string{
			"product_name": "Mango Pulp",
			"quantity":     "ten bags",
		})
		errs := NewErrorCollection(50)
		ValidateRow(row, rules, errs)
		require.Equal(t, 1, errs.TotalCount())
		assert.Equal(t, ErrCodeInvalidType, errs.Errors()[0].Code)
		assert.Equal(t, "quantity", errs.Errors()[0].Column)
	})
}

func TestParseDate(t *testing.T) {
	cases := []string{"2026-03-15", "2026/03/15", "15-03-2026", "15/03/2026"}
	for _, raw := range cases {
		parsed, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2026, parsed.Year())
		assert.Equal(t, 15, parsed.Day())
	}

	_, err := ParseDate("soon")
	assert.Error(t, err)
}

func TestErrorCollection(t *testing.T) {
	collection := NewErrorCollection(2)
	for i := 0; i < 5; i++ {
		collection.Add(RowError{Sheet: "Dispatch", Row: i + 2, Code: ErrCodeRequiredField, Column: "customer_name"})
	}
	assert.Equal(t, 5, collection.TotalCount())
	assert.Len(t, collection.Errors(), 2)
	assert.True(t, collection.IsTruncated())
	assert.Contains(t, collection.String(), "showing first 2")

	validationErr := NewValidationError(collection)
	assert.Equal(t, 5, validationErr.Total)
	assert.Len(t, validationErr.Details, 2)
	assert.Contains(t, validationErr.Error(), "5 error(s)")
}
