package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

func TestFormatQuantity(t *testing.T) {
	cases := map[string]string{
		"0":        "0",
		"18":       "18",
		"-1":       "-1",
		"1234.5":   "1.234,5",
		"1000000":  "1.000.000",
		"-2500.25": "-2.500,25",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatQuantity(decimal.RequireFromString(in)), in)
	}
}

func TestRenderCountReport(t *testing.T) {
	g := NewMarotoCountReport("Bodega Central")
	report := &inventory.CountReport{
		WarehouseName: "Principal",
		Count: &entity.InventoryCount{
			ID:             "0f8fad5b-d9cb-469f-a165-70867728950e",
			DateRange:      "octubre 2026",
			Status:         entity.CountStatusPending,
			TotalProducts:  2,
			TotalVariances: 1,
			CreatedAt:      time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
			Items: []entity.InventoryItem{
				{SKU: "A-1", ProductName: "Arroz", SystemStock: decimal.NewFromInt(20), PhysicalCount: decimal.NewFromInt(18),
					Shrinkage: decimal.NewFromInt(1), ShrinkageNotes: "bolsa rota", Variance: decimal.NewFromInt(-1), VarianceType: entity.VarianceFaltante},
				{SKU: "B-2", ProductName: "Frijol", SystemStock: decimal.NewFromInt(10), PhysicalCount: decimal.NewFromInt(10),
					VarianceType: entity.VarianceExacto},
			},
		},
	}

	out, err := g.RenderCountReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = g.RenderCountReport(context.Background(), &inventory.CountReport{})
	assert.Error(t, err)
}
