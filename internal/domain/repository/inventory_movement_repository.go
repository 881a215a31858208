package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de ajuste.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
