package inventory

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

// Catalog instantánea de solo lectura de productos y bodegas de una empresa.
type Catalog struct {
	Products   []*entity.Product
	Warehouses []*entity.Warehouse
	LoadedAt   time.Time
}

// Product busca un producto por ID.
func (c *Catalog) Product(id string) (*entity.Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Warehouse busca una bodega por ID.
func (c *Catalog) Warehouse(id string) (*entity.Warehouse, bool) {
	for _, w := range c.Warehouses {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// ValidScope indica si el alcance es global o una bodega conocida.
func (c *Catalog) ValidScope(scope entity.Scope) bool {
	if scope.IsGlobal() {
		return true
	}
	_, ok := c.Warehouse(scope.WarehouseID())
	return ok
}

// CatalogLoader lee el catálogo completo del proveedor (productos + bodegas).
type CatalogLoader struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
}

// NewCatalogLoader construye el cargador de catálogo.
func NewCatalogLoader(products repository.ProductRepository, warehouses repository.WarehouseRepository) *CatalogLoader {
	return &CatalogLoader{products: products, warehouses: warehouses}
}

// Load consulta productos y bodegas en paralelo. Si cualquiera falla, el catálogo
// completo se considera no disponible: nunca se cuenta contra datos parciales.
func (l *CatalogLoader) Load(ctx context.Context, companyID string) (*Catalog, error) {
	var (
		products   []*entity.Product
		warehouses []*entity.Warehouse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.products.ListWithStock(gctx, companyID)
		if err != nil {
			return fmt.Errorf("productos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		warehouses, err = l.warehouses.ListByCompany(gctx, companyID)
		if err != nil {
			return fmt.Errorf("bodegas: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return &Catalog{Products: products, Warehouses: warehouses, LoadedAt: time.Now()}, nil
}
