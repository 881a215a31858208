package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// WarehouseRepository define el puerto de lectura de bodegas (DIP).
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Warehouse, error)
}
