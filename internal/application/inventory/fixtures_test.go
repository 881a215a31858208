package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/memory"
)

const (
	company = "empresa-1"
	user    = "usuario-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func legacy(id, sku, name, qty string) entity.Product {
	return entity.Product{ID: id, CompanyID: company, SKU: sku, Name: name, Stock: decimal.NewNullDecimal(dec(qty))}
}

func split(id, sku, name string, records ...string) entity.Product {
	p := entity.Product{ID: id, CompanyID: company, SKU: sku, Name: name}
	for i := 0; i+1 < len(records); i += 2 {
		p.Stocks = append(p.Stocks, entity.WarehouseStock{
			ProductID: id, WarehouseID: records[i], Quantity: decimal.NewNullDecimal(dec(records[i+1])),
		})
	}
	return p
}

// newStore crea un almacén con las bodegas W1 y W2.
func newStore(products ...entity.Product) *memory.Store {
	s := memory.NewStore()
	s.PutWarehouse(entity.Warehouse{ID: "W1", CompanyID: company, Name: "Principal"})
	s.PutWarehouse(entity.Warehouse{ID: "W2", CompanyID: company, Name: "Sucursal Norte"})
	for _, p := range products {
		s.PutProduct(p)
	}
	return s
}

func loadCatalog(t *testing.T, s *memory.Store) *inventory.Catalog {
	t.Helper()
	cat, err := inventory.NewCatalogLoader(s.Products(), s.Warehouses()).Load(context.Background(), company)
	require.NoError(t, err)
	return cat
}

func openWorkspace(t *testing.T, s *memory.Store, scope entity.Scope) *inventory.Workspace {
	t.Helper()
	ws, err := inventory.NewWorkspace("ws-1", company, user, scope, loadCatalog(t, s))
	require.NoError(t, err)
	return ws
}

func manyProducts(n int) []entity.Product {
	out := make([]entity.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, legacy(fmt.Sprintf("P%02d", i), fmt.Sprintf("SKU-%02d", i), fmt.Sprintf("Artículo %02d", i), "5"))
	}
	return out
}

func stockOf(t *testing.T, s *memory.Store, productID string) (*entity.Product, decimal.Decimal) {
	t.Helper()
	p, err := s.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p, p.Stock.Decimal
}

type fakeRenderer struct {
	calls int
	last  *inventory.CountReport
	err   error
}

func (f *fakeRenderer) RenderCountReport(_ context.Context, r *inventory.CountReport) ([]byte, error) {
	f.calls++
	f.last = r
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

type failingBus struct{ inventory.AckBus }

func (failingBus) Publish(context.Context, string) error { return errors.New("broker caído") }
