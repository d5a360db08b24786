package procurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Acme Traders", "acme traders"},
		{"ACME   TRADERS", "acme traders"},
		{"  acme traders  ", "acme traders"},
		{"Acme\tTraders", "acme traders"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNewVendor(t *testing.T) {
	t.Run("creates vendor with normalized name", func(t *testing.T) {
		vendor, err := NewVendor("  Acme  Traders ", " 0170000000 ", " Dhaka ")
		require.NoError(t, err)

		assert.Equal(t, "Acme  Traders", vendor.Name)
		assert.Equal(t, "acme traders", vendor.NormalizedName)
		assert.Equal(t, "0170000000", vendor.Phone)
		assert.Equal(t, "Dhaka", vendor.Address)
		assert.NotEqual(t, uuid.Nil, vendor.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewVendor("   ", "", "")
		assert.Error(t, err)
	})
}

func TestNewRawMaterial(t *testing.T) {
	t.Run("creates material with normalized name", func(t *testing.T) {
		material, err := NewRawMaterial("Green Peas", "kg")
		require.NoError(t, err)

		assert.Equal(t, "Green Peas", material.Name)
		assert.Equal(t, "green peas", material.NormalizedName)
		assert.Equal(t, "kg", material.Unit)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRawMaterial("", "kg")
		assert.Error(t, err)
	})
}

func TestNewMaterialOrder(t *testing.T) {
	materialID := uuid.New()
	vendorID := uuid.New()
	arrival := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)

	t.Run("creates intake order", func(t *testing.T) {
		order, err := NewMaterialOrder(materialID, vendorID, decimal.NewFromInt(500), "kg", arrival)
		require.NoError(t, err)

		assert.Equal(t, materialID, order.MaterialID)
		assert.Equal(t, vendorID, order.VendorID)
		assert.True(t, order.Quantity.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, arrival, order.ArrivalDate)
	})

	t.Run("rejects nil material ID", func(t *testing.T) {
		_, err := NewMaterialOrder(uuid.Nil, vendorID, decimal.NewFromInt(500), "kg", arrival)
		assert.Error(t, err)
	})

	t.Run("rejects nil vendor ID", func(t *testing.T) {
		_, err := NewMaterialOrder(materialID, uuid.Nil, decimal.NewFromInt(500), "kg", arrival)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewMaterialOrder(materialID, vendorID, decimal.Zero, "kg", arrival)
		assert.Error(t, err)

		_, err = NewMaterialOrder(materialID, vendorID, decimal.NewFromInt(-1), "kg", arrival)
		assert.Error(t, err)
	})
}

func TestNewProduction(t *testing.T) {
	producedOn := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates production run", func(t *testing.T) {
		production, err := NewProduction("Frozen Peas", decimal.NewFromInt(80), producedOn)
		require.NoError(t, err)

		assert.Equal(t, "Frozen Peas", production.ProductName)
		assert.True(t, production.OutputBags.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, uuid.Nil, production.MaterialOrderID)
	})

	t.Run("links material order", func(t *testing.T) {
		production, err := NewProduction("Frozen Peas", decimal.NewFromInt(80), producedOn)
		require.NoError(t, err)

		orderID := uuid.New()
		production.LinkMaterialOrder(orderID)
		assert.Equal(t, orderID, production.MaterialOrderID)
	})

	t.Run("rejects empty product name", func(t *testing.T) {
		_, err := NewProduction("  ", decimal.NewFromInt(80), producedOn)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive output", func(t *testing.T) {
		_, err := NewProduction("Frozen Peas", decimal.Zero, producedOn)
		assert.Error(t, err)
	})
}
