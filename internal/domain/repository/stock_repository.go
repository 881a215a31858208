package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Solo el cierre de un conteo escribe; se usa dentro de transacciones.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Sin registro devuelve (nil, nil).
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	// ListByProductForUpdate bloquea todos los registros del producto, ordenados por bodega.
	ListByProductForUpdate(ctx context.Context, productID string) ([]entity.WarehouseStock, error)
	Upsert(ctx context.Context, stock *entity.WarehouseStock) error
}
