package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del conteo. pending es el inicial (Save); completed es terminal (Close).
const (
	CountStatusPending   = "pending"
	CountStatusCompleted = "completed"
)

// Forma en que se cerró un conteo.
const (
	CloseModeAck    = "ack"    // confirmación de impresión del reporte
	CloseModeManual = "manual" // cierre forzado por un operador
)

// VarianceType clasificación de la diferencia entre lo contado y el sistema.
type VarianceType string

const (
	VarianceExacto   VarianceType = "exacto"
	VarianceFaltante VarianceType = "faltante"
	VarianceSobrante VarianceType = "sobrante"
)

// InventoryItem línea de conteo. Fuera de un InventoryCount es un borrador mutable;
// dentro, una instantánea inmutable.
type InventoryItem struct {
	ProductID      string
	SKU            string
	ProductName    string
	SystemStock    decimal.Decimal
	PhysicalCount  decimal.Decimal
	Shrinkage      decimal.Decimal // merma del periodo (solo auditoría)
	ShrinkageNotes string
	Variance       decimal.Decimal // (PhysicalCount + Shrinkage) - SystemStock
	VarianceType   VarianceType
}

// InventoryCount conteo físico persistido.
type InventoryCount struct {
	ID             string
	CompanyID      string
	DateRange      string // informativo
	Scope          Scope
	Status         string
	Items          []InventoryItem
	TotalProducts  int
	TotalVariances int
	CreatedBy      string
	CreatedAt      time.Time
	ClosedBy       string
	ClosedAt       *time.Time
	CloseMode      string
	CloseReason    string
}

// IsPending indica si el conteo aún no se aplicó al stock.
func (c *InventoryCount) IsPending() bool {
	return c != nil && c.Status == CountStatusPending
}
