package inventory

import (
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Classify calcula la diferencia del conteo: (físico + merma) - sistema.
// La comparación con cero es exacta; redondear antes de llamar si hace falta.
func Classify(systemStock, physicalCount, shrinkage decimal.Decimal) (decimal.Decimal, entity.VarianceType) {
	variance := physicalCount.Add(shrinkage).Sub(systemStock)
	switch variance.Sign() {
	case 0:
		return variance, entity.VarianceExacto
	case -1:
		return variance, entity.VarianceFaltante
	default:
		return variance, entity.VarianceSobrante
	}
}

// Recompute actualiza SystemStock, Variance y VarianceType de un borrador.
func Recompute(item *entity.InventoryItem, p *entity.Product, scope entity.Scope) {
	item.SystemStock = SystemStock(p, scope)
	item.Variance, item.VarianceType = Classify(item.SystemStock, item.PhysicalCount, item.Shrinkage)
}

// CountVariances cuenta los ítems con diferencia distinta de cero.
func CountVariances(items []entity.InventoryItem) int {
	n := 0
	for _, it := range items {
		if !it.Variance.IsZero() {
			n++
		}
	}
	return n
}
