package inventory

import (
	"sort"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DistributeGlobal reparte un conteo global entre los registros por bodega del producto
// de modo que la suma final sea target. Las cantidades NULL o negativas parten de 0.
//
//   - Sobrante: la diferencia se suma a la bodega con más stock.
//   - Faltante: se descuenta de las bodegas con más stock primero, sin bajar de 0.
//
// Empates por cantidad se resuelven por WarehouseID. El resultado conserva el orden de entrada.
func DistributeGlobal(records []entity.WarehouseStock, target decimal.Decimal) []entity.WarehouseStock {
	out := make([]entity.WarehouseStock, len(records))
	copy(out, records)
	if len(out) == 0 {
		return out
	}

	current := decimal.Zero
	for i := range out {
		q := out[i].Qty()
		if q.IsNegative() {
			q = decimal.Zero
		}
		out[i].Quantity = decimal.NewNullDecimal(q)
		current = current.Add(q)
	}
	if target.IsNegative() {
		target = decimal.Zero
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		qa, qb := out[order[a]].Qty(), out[order[b]].Qty()
		if !qa.Equal(qb) {
			return qa.GreaterThan(qb)
		}
		return out[order[a]].WarehouseID < out[order[b]].WarehouseID
	})

	delta := target.Sub(current)
	switch delta.Sign() {
	case 1:
		i := order[0]
		out[i].Quantity = decimal.NewNullDecimal(out[i].Qty().Add(delta))
	case -1:
		missing := delta.Neg()
		for _, i := range order {
			if !missing.IsPositive() {
				break
			}
			q := out[i].Qty()
			take := decimal.Min(q, missing)
			out[i].Quantity = decimal.NewNullDecimal(q.Sub(take))
			missing = missing.Sub(take)
		}
	}
	return out
}
