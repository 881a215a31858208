package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento que genera el cierre de un conteo físico.
const (
	MovementTypeADJUSTMENT = "ADJUSTMENT" // físico - sistema
	MovementTypeTRANSFER   = "TRANSFER"   // stock heredado pasado a una bodega
)

// InventoryMovement deja rastro de cada cambio de stock aplicado por un cierre.
// WarehouseID vacío indica ajuste sobre el stock heredado del producto.
type InventoryMovement struct {
	ID            string
	TransactionID string // id del conteo
	ProductID     string
	WarehouseID   string
	Type          string
	Quantity      decimal.Decimal // nuevo - anterior
	PreviousQty   decimal.Decimal
	NewQty        decimal.Decimal
	Date          time.Time
	CreatedBy     string
}
