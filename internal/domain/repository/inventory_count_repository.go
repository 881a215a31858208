package repository

import (
	"context"
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// CountFilter filtros del listado de conteos.
type CountFilter struct {
	Status string // vacío = todos
	Limit  int
	Offset int
}

// CountClosure datos que registra el cierre de un conteo.
type CountClosure struct {
	ClosedBy string
	ClosedAt time.Time
	Mode     string
	Reason   string
}

// InventoryCountRepository define el puerto de persistencia de conteos físicos.
type InventoryCountRepository interface {
	// Create persiste el encabezado y sus ítems.
	Create(ctx context.Context, count *entity.InventoryCount) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryCount, error)
	// GetForUpdate bloquea el encabezado del conteo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryCount, error)
	// MarkCompleted pasa de pending a completed. Devuelve domain.ErrCountAlreadyClosed
	// si la fila ya no estaba pendiente.
	MarkCompleted(ctx context.Context, id string, closure CountClosure) error
	ListByCompany(ctx context.Context, companyID string, filter CountFilter) ([]*entity.InventoryCount, error)
}
