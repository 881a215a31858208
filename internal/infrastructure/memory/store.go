// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory).
// Las transacciones toman un candado global y restauran el estado si fn falla.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct{ productID, warehouseID string }

type state struct {
	products   map[string]entity.Product // sin Stocks; se arman desde stock
	warehouses map[string]entity.Warehouse
	stock      map[stockKey]entity.WarehouseStock
	counts     map[string]entity.InventoryCount
	movements  []entity.InventoryMovement
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		stock:      make(map[stockKey]entity.WarehouseStock, len(s.stock)),
		counts:     make(map[string]entity.InventoryCount, len(s.counts)),
		movements:  append([]entity.InventoryMovement(nil), s.movements...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.counts {
		c.counts[k] = copyCount(v)
	}
	return c
}

// Store almacén en memoria. Los valores devueltos son copias.
type Store struct {
	mu sync.Mutex
	st *state

	// FailNext, si no es nil, hace fallar la próxima operación de escritura (tests).
	FailNext error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: &state{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		stock:      make(map[stockKey]entity.WarehouseStock),
		counts:     make(map[string]entity.InventoryCount),
	}}
}

// PutWarehouse agrega o reemplaza una bodega.
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[w.ID] = w
}

// PutProduct agrega o reemplaza un producto junto con sus registros por bodega.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.st.stock {
		if k.productID == p.ID {
			delete(s.st.stock, k)
		}
	}
	for _, r := range p.Stocks {
		r.ProductID = p.ID
		s.st.stock[stockKey{p.ID, r.WarehouseID}] = r
	}
	p.Stocks = nil
	s.st.products[p.ID] = p
}

// Seed carga un catálogo: productos con sus registros por bodega y las bodegas que
// referencian y aún no existen (nombre = ID). Devuelve cuántos productos cargó.
func (s *Store) Seed(companyID string, products []entity.Product) int {
	for _, p := range products {
		for _, r := range p.Stocks {
			s.mu.Lock()
			if _, ok := s.st.warehouses[r.WarehouseID]; !ok {
				s.st.warehouses[r.WarehouseID] = entity.Warehouse{
					ID: r.WarehouseID, CompanyID: companyID, Name: r.WarehouseID, CreatedAt: time.Now(),
				}
			}
			s.mu.Unlock()
		}
		p.CompanyID = companyID
		s.PutProduct(p)
	}
	return len(products)
}

// DeleteProduct elimina un producto y sus registros por bodega (simula otra sesión).
func (s *Store) DeleteProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.products, productID)
	for k := range s.st.stock {
		if k.productID == productID {
			delete(s.st.stock, k)
		}
	}
}

// SetStock sobrescribe un registro fuera de transacción (simula otra sesión).
func (s *Store) SetStock(productID, warehouseID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stock[stockKey{productID, warehouseID}] = entity.WarehouseStock{
		ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.NewNullDecimal(qty), UpdatedAt: time.Now(),
	}
}

// Movements devuelve todos los movimientos registrados.
func (s *Store) Movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.InventoryMovement(nil), s.st.movements...)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s: s} }

// Counts repositorio de conteos fuera de transacción.
func (s *Store) Counts() repository.InventoryCountRepository { return &countRepo{s: s} }

// Stock repositorio de stock fuera de transacción.
func (s *Store) Stock() repository.StockRepository { return &stockRepo{s: s} }

// Run ejecuta fn de forma atómica: si falla, el estado vuelve al de antes.
func (s *Store) Run(ctx context.Context, fn func(
	countRepo repository.InventoryCountRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()
	tx := &Store{st: s.st, FailNext: s.FailNext}
	err := fn(&countRepo{s: tx, locked: true}, &stockRepo{s: tx, locked: true}, &productRepo{s: tx, locked: true}, &movementRepo{s: tx})
	s.FailNext = tx.FailNext
	if err != nil {
		s.st = backup
		return err
	}
	return nil
}

// with ejecuta fn con el candado salvo que ya se tenga (dentro de Run).
func (s *Store) with(locked bool, fn func(st *state)) {
	if !locked {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.st)
}

func (s *Store) failWrite() error {
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return err
	}
	return nil
}

func (st *state) productWithStock(p entity.Product) *entity.Product {
	out := p
	out.Stocks = nil
	for k, r := range st.stock {
		if k.productID == p.ID {
			out.Stocks = append(out.Stocks, r)
		}
	}
	sort.Slice(out.Stocks, func(i, j int) bool { return out.Stocks[i].WarehouseID < out.Stocks[j].WarehouseID })
	return &out
}

func copyCount(c entity.InventoryCount) entity.InventoryCount {
	c.Items = append([]entity.InventoryItem(nil), c.Items...)
	if c.ClosedAt != nil {
		t := *c.ClosedAt
		c.ClosedAt = &t
	}
	return c
}

// ── productos ────────────────────────────────────────────────────────────────

type productRepo struct {
	s      *Store
	locked bool
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.s.with(r.locked, func(st *state) {
		if p, ok := st.products[id]; ok {
			out = st.productWithStock(p)
		}
	})
	return out, nil
}

func (r *productRepo) ListWithStock(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.s.with(r.locked, func(st *state) {
		for _, p := range st.products {
			if p.CompanyID == companyID {
				out = append(out, st.productWithStock(p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *productRepo) UpdateLegacyStock(_ context.Context, productID string, qty decimal.Decimal) error {
	var err error
	r.s.with(r.locked, func(st *state) {
		if err = r.s.failWrite(); err != nil {
			return
		}
		p, ok := st.products[productID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		p.Stock = decimal.NewNullDecimal(qty)
		p.UpdatedAt = time.Now()
		st.products[productID] = p
	})
	return err
}

// ── bodegas ──────────────────────────────────────────────────────────────────

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.s.with(false, func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *warehouseRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	r.s.with(false, func(st *state) {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID {
				w := w
				out = append(out, &w)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── stock ────────────────────────────────────────────────────────────────────

type stockRepo struct {
	s      *Store
	locked bool
}

func (r *stockRepo) GetForUpdate(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	var out *entity.WarehouseStock
	r.s.with(r.locked, func(st *state) {
		if v, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			out = &v
		}
	})
	return out, nil
}

func (r *stockRepo) ListByProductForUpdate(_ context.Context, productID string) ([]entity.WarehouseStock, error) {
	var out []entity.WarehouseStock
	r.s.with(r.locked, func(st *state) {
		for k, v := range st.stock {
			if k.productID == productID {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

func (r *stockRepo) Upsert(_ context.Context, stock *entity.WarehouseStock) error {
	var err error
	r.s.with(r.locked, func(st *state) {
		if err = r.s.failWrite(); err != nil {
			return
		}
		// Igual que la llave foránea de stock.product_id
		if _, ok := st.products[stock.ProductID]; !ok {
			err = domain.ErrNotFound
			return
		}
		v := *stock
		v.UpdatedAt = time.Now()
		st.stock[stockKey{stock.ProductID, stock.WarehouseID}] = v
	})
	return err
}

// ── conteos ──────────────────────────────────────────────────────────────────

type countRepo struct {
	s      *Store
	locked bool
}

func (r *countRepo) Create(_ context.Context, count *entity.InventoryCount) error {
	var err error
	r.s.with(r.locked, func(st *state) {
		if err = r.s.failWrite(); err != nil {
			return
		}
		if _, ok := st.counts[count.ID]; ok {
			err = domain.ErrConflict
			return
		}
		st.counts[count.ID] = copyCount(*count)
	})
	return err
}

func (r *countRepo) GetByID(_ context.Context, id string) (*entity.InventoryCount, error) {
	var out *entity.InventoryCount
	r.s.with(r.locked, func(st *state) {
		if c, ok := st.counts[id]; ok {
			c = copyCount(c)
			out = &c
		}
	})
	return out, nil
}

func (r *countRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryCount, error) {
	return r.GetByID(ctx, id)
}

func (r *countRepo) MarkCompleted(_ context.Context, id string, closure repository.CountClosure) error {
	var err error
	r.s.with(r.locked, func(st *state) {
		if err = r.s.failWrite(); err != nil {
			return
		}
		c, ok := st.counts[id]
		if !ok {
			err = domain.ErrCountNotFound
			return
		}
		if c.Status != entity.CountStatusPending {
			err = domain.ErrCountAlreadyClosed
			return
		}
		at := closure.ClosedAt
		c.Status = entity.CountStatusCompleted
		c.ClosedBy = closure.ClosedBy
		c.ClosedAt = &at
		c.CloseMode = closure.Mode
		c.CloseReason = closure.Reason
		st.counts[id] = c
	})
	return err
}

func (r *countRepo) ListByCompany(_ context.Context, companyID string, filter repository.CountFilter) ([]*entity.InventoryCount, error) {
	var out []*entity.InventoryCount
	r.s.with(r.locked, func(st *state) {
		for _, c := range st.counts {
			if c.CompanyID != companyID || (filter.Status != "" && c.Status != filter.Status) {
				continue
			}
			c = copyCount(c)
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ── movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if err := r.s.failWrite(); err != nil {
		return err
	}
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r *movementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.st.movements {
		if m.TransactionID == transactionID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}
