package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseStock representa el stock actual de un producto en una bodega (tabla stock).
// Quantity puede venir NULL desde el origen; el agregador lo normaliza a 0.
type WarehouseStock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.NullDecimal
	UpdatedAt   time.Time
}

// Qty devuelve la cantidad normalizada (NULL → 0).
func (s WarehouseStock) Qty() decimal.Decimal {
	if !s.Quantity.Valid {
		return decimal.Zero
	}
	return s.Quantity.Decimal
}
