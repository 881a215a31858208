// Package inventory contiene las reglas puras del conteo físico: stock del sistema,
// clasificación de diferencias y reparto de un conteo global entre bodegas.
package inventory

import (
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SystemStock calcula el stock del sistema que sirve de base para el conteo.
//
//   - Alcance de bodega: cantidad de esa bodega, 0 si no hay registro.
//   - Alcance global: suma de todas las bodegas del producto.
//   - Sin registros por bodega: campo heredado Product.Stock.
//
// Un producto con registros que suman 0 no usa el campo heredado.
func SystemStock(p *entity.Product, scope entity.Scope) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if !p.HasWarehouseRecords() {
		if !scope.IsGlobal() {
			return decimal.Zero
		}
		return NormalizeQuantity(p.Stock)
	}
	if !scope.IsGlobal() {
		s, ok := p.StockIn(scope.WarehouseID())
		if !ok {
			return decimal.Zero
		}
		return s.Qty()
	}
	total := decimal.Zero
	for _, s := range p.Stocks {
		total = total.Add(s.Qty())
	}
	return total
}
