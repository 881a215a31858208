package inventory

import (
	"context"

	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que guardar y cerrar un conteo sean atómicos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		countRepo repository.InventoryCountRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
