package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la vista de solo lectura del catálogo que consume el conteo físico.
// Stock es el campo escalar heredado: solo es autoritativo cuando Stocks está vacío
// (productos aún no migrados a multi-bodega).
type Product struct {
	ID        string
	CompanyID string
	SKU       string // código único por empresa
	Name      string
	Stock     decimal.NullDecimal
	Stocks    []WarehouseStock // ordenado por warehouse_id; máximo uno por bodega
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasWarehouseRecords indica si el producto ya maneja stock por bodega.
func (p *Product) HasWarehouseRecords() bool {
	return p != nil && len(p.Stocks) > 0
}

// StockIn devuelve el registro de la bodega indicada, si existe.
func (p *Product) StockIn(warehouseID string) (WarehouseStock, bool) {
	if p == nil {
		return WarehouseStock{}, false
	}
	for _, s := range p.Stocks {
		if s.WarehouseID == warehouseID {
			return s, true
		}
	}
	return WarehouseStock{}, false
}
