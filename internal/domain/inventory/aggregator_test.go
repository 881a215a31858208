package inventory_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rec(warehouseID, qty string) entity.WarehouseStock {
	return entity.WarehouseStock{WarehouseID: warehouseID, Quantity: decimal.NewNullDecimal(dec(qty))}
}

func TestSystemStock_GlobalYPorBodega(t *testing.T) {
	p := &entity.Product{ID: "p1", Stocks: []entity.WarehouseStock{rec("W1", "5"), rec("W2", "3")}}

	assert.True(t, dec("8").Equal(inventory.SystemStock(p, entity.ScopeGlobal)), "global suma todas las bodegas")
	assert.True(t, dec("5").Equal(inventory.SystemStock(p, entity.WarehouseScope("W1"))))
	assert.True(t, inventory.SystemStock(p, entity.WarehouseScope("W3")).IsZero(), "bodega sin registro = 0")
}

func TestSystemStock_FallbackHeredado(t *testing.T) {
	legacy := &entity.Product{ID: "p1", Stock: decimal.NewNullDecimal(dec("12"))}
	assert.True(t, dec("12").Equal(inventory.SystemStock(legacy, entity.ScopeGlobal)))

	// Registros que suman cero no activan el fallback.
	zero := &entity.Product{ID: "p2", Stock: decimal.NewNullDecimal(dec("12")), Stocks: []entity.WarehouseStock{rec("W1", "0")}}
	assert.True(t, inventory.SystemStock(zero, entity.ScopeGlobal).IsZero())
}

func TestSystemStock_ValoresNulosSeNormalizan(t *testing.T) {
	p := &entity.Product{ID: "p1", Stocks: []entity.WarehouseStock{
		{WarehouseID: "W1"}, // NULL
		rec("W2", "2.5"),
	}}
	assert.True(t, dec("2.5").Equal(inventory.SystemStock(p, entity.ScopeGlobal)))
	assert.True(t, inventory.SystemStock(p, entity.WarehouseScope("W1")).IsZero())
	assert.True(t, inventory.SystemStock(nil, entity.ScopeGlobal).IsZero())
	assert.True(t, inventory.SystemStock(&entity.Product{}, entity.ScopeGlobal).IsZero(), "heredado NULL = 0")
}

func TestNormalizeQuantity(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"string", " 7.25 ", "7.25"},
		{"string vacío", "", "0"},
		{"basura", "abc", "0"},
		{"int", 4, "4"},
		{"float", 1.5, "1.5"},
		{"NaN", math.NaN(), "0"},
		{"Inf", math.Inf(1), "0"},
		{"json.Number", json.Number("9"), "9"},
		{"NullDecimal inválido", decimal.NullDecimal{}, "0"},
		{"tipo desconocido", struct{}{}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.NormalizeQuantity(tc.in)
			assert.True(t, dec(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseCount(t *testing.T) {
	d, ok := inventory.ParseCount("18,5")
	assert.True(t, ok)
	assert.True(t, dec("18.5").Equal(d))

	for _, bad := range []string{"", "-1", "1e", "diez", "10.00001", "1e20", "100000000000000"} {
		_, ok := inventory.ParseCount(bad)
		assert.False(t, ok, "%q debe rechazarse", bad)
	}

	for _, good := range []string{"10,0001", "99999999999999.9999", "1.50000", "0"} {
		_, ok := inventory.ParseCount(good)
		assert.True(t, ok, "%q debe aceptarse", good)
	}
}

func TestValidCount(t *testing.T) {
	assert.True(t, inventory.ValidCount(dec("12.3456")))
	assert.False(t, inventory.ValidCount(dec("12.34567")))
	assert.False(t, inventory.ValidCount(dec("-0.5")))
	assert.False(t, inventory.ValidCount(decimal.New(1, 14)))
}
