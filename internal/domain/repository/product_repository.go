package repository

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de lectura del catálogo y la escritura del stock heredado (DIP).
type ProductRepository interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListWithStock devuelve todos los productos de la empresa con sus registros por bodega.
	ListWithStock(ctx context.Context, companyID string) ([]*entity.Product, error)
	// UpdateLegacyStock sobrescribe el campo escalar heredado (solo productos sin bodegas).
	UpdateLegacyStock(ctx context.Context, productID string, qty decimal.Decimal) error
}
