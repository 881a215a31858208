package inventory

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/inventory"
)

// Filter filtro de la lista visible del espacio de conteo.
type Filter struct {
	Search        string // SKU o nombre, sin distinguir mayúsculas
	VariancesOnly bool   // solo productos con borrador y diferencia distinta de cero
}

// WorkspaceRow fila visible del espacio de conteo.
type WorkspaceRow struct {
	ProductID   string
	SKU         string
	Name        string
	SystemStock decimal.Decimal
	Item        *entity.InventoryItem // nil si aún no hay borrador
	Selected    bool
}

// WorkspaceSnapshot copia consistente del estado para presentarlo.
type WorkspaceSnapshot struct {
	ID            string
	CompanyID     string
	UserID        string
	Scope         entity.Scope
	Filter        Filter
	Warehouses    []*entity.Warehouse
	Rows          []WorkspaceRow
	SelectedCount int
	VisibleStock  decimal.Decimal
	Blocked       error
	TouchedAt     time.Time
}

type draft struct {
	item    entity.InventoryItem
	counted bool // el usuario digitó el conteo físico
}

// Workspace conteo en curso de una sola sesión. Vive solo en memoria: abandonarlo no
// deja rastro. Las ediciones se serializan con mu; cada recálculo termina antes de
// aceptar la siguiente edición.
type Workspace struct {
	mu        sync.Mutex
	id        string
	companyID string
	userID    string
	scope     entity.Scope
	catalog   *Catalog
	products  map[string]*entity.Product
	drafts    map[string]*draft
	selected  map[string]struct{}
	filter    Filter
	failure   error
	touchedAt time.Time
}

// NewWorkspace crea un espacio de conteo sobre un catálogo completo.
func NewWorkspace(id, companyID, userID string, scope entity.Scope, cat *Catalog) (*Workspace, error) {
	if cat == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	if !cat.ValidScope(scope) {
		return nil, domain.ErrUnknownWarehouse
	}
	w := &Workspace{
		id:        id,
		companyID: companyID,
		userID:    userID,
		scope:     entity.WarehouseScope(scope.WarehouseID()),
		drafts:    make(map[string]*draft),
		selected:  make(map[string]struct{}),
		touchedAt: time.Now(),
	}
	w.setCatalog(cat)
	return w, nil
}

func (w *Workspace) ID() string        { return w.id }
func (w *Workspace) CompanyID() string { return w.companyID }
func (w *Workspace) UserID() string    { return w.userID }

// Scope alcance de bodega actual.
func (w *Workspace) Scope() entity.Scope {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scope
}

// TouchedAt última actividad registrada.
func (w *Workspace) TouchedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touchedAt
}

func (w *Workspace) setCatalog(cat *Catalog) {
	w.catalog = cat
	w.products = make(map[string]*entity.Product, len(cat.Products))
	for _, p := range cat.Products {
		w.products[p.ID] = p
	}
}

// guard verifica que el espacio no esté bloqueado y marca actividad. Requiere mu.
func (w *Workspace) guard() error {
	if w.failure != nil {
		return w.failure
	}
	w.touchedAt = time.Now()
	return nil
}

// SetScope cambia el alcance e invalida el stock del sistema de todos los borradores.
func (w *Workspace) SetScope(scope entity.Scope) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	if !w.catalog.ValidScope(scope) {
		return domain.ErrUnknownWarehouse
	}
	w.scope = entity.WarehouseScope(scope.WarehouseID())
	w.recomputeAll()
	return nil
}

// SetFilter reemplaza el filtro de la lista visible.
func (w *Workspace) SetFilter(f Filter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	f.Search = strings.TrimSpace(f.Search)
	w.filter = f
	return nil
}

// Select agrega un producto del catálogo a la selección.
func (w *Workspace) Select(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	if _, ok := w.products[productID]; !ok {
		return domain.ErrNotFound
	}
	w.selected[productID] = struct{}{}
	return nil
}

// Deselect quita un producto de la selección; su borrador se conserva.
func (w *Workspace) Deselect(productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	delete(w.selected, productID)
	return nil
}

// SelectAll selecciona los productos visibles con el filtro actual, nunca el catálogo
// completo. Devuelve cuántos productos visibles quedaron seleccionados.
func (w *Workspace) SelectAll() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return 0, err
	}
	visible := w.visible()
	for _, p := range visible {
		w.selected[p.ID] = struct{}{}
	}
	return len(visible), nil
}

// ClearSelection deselecciona todo.
func (w *Workspace) ClearSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return err
	}
	w.selected = make(map[string]struct{})
	return nil
}

// SetPhysicalCount registra la cantidad contada físicamente.
func (w *Workspace) SetPhysicalCount(productID string, value decimal.Decimal) (entity.InventoryItem, error) {
	return w.edit(productID, func(d *draft) error {
		if !inventory.ValidCount(value) {
			return domain.ErrInvalidQuantity
		}
		d.item.PhysicalCount = value
		d.counted = true
		return nil
	})
}

// SetShrinkage registra la merma del periodo. Volver a 0 limpia las notas.
func (w *Workspace) SetShrinkage(productID string, value decimal.Decimal) (entity.InventoryItem, error) {
	return w.edit(productID, func(d *draft) error {
		if !inventory.ValidCount(value) {
			return domain.ErrInvalidQuantity
		}
		d.item.Shrinkage = value
		if !value.IsPositive() {
			d.item.ShrinkageNotes = ""
		}
		return nil
	})
}

// SetShrinkageNotes texto libre; solo se habilita con merma mayor a cero.
func (w *Workspace) SetShrinkageNotes(productID, text string) (entity.InventoryItem, error) {
	return w.edit(productID, func(d *draft) error {
		if !d.item.Shrinkage.IsPositive() {
			return domain.ErrShrinkageNotesDisabled
		}
		d.item.ShrinkageNotes = text
		return nil
	})
}

// edit aplica fn sobre el borrador (creándolo si falta) y recalcula. Si fn falla el
// borrador queda como estaba.
func (w *Workspace) edit(productID string, fn func(*draft) error) (entity.InventoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(); err != nil {
		return entity.InventoryItem{}, err
	}
	p, ok := w.products[productID]
	if !ok {
		return entity.InventoryItem{}, domain.ErrNotFound
	}
	d, exists := w.drafts[productID]
	var work draft
	if exists {
		work = *d
	} else {
		work = draft{item: entity.InventoryItem{ProductID: p.ID, SKU: p.SKU, ProductName: p.Name}}
	}
	if err := fn(&work); err != nil {
		return entity.InventoryItem{}, err
	}
	w.recompute(&work, p)
	w.drafts[productID] = &work
	return work.item, nil
}

// Item devuelve una copia del borrador del producto.
func (w *Workspace) Item(productID string) (entity.InventoryItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.drafts[productID]
	if !ok {
		return entity.InventoryItem{}, false
	}
	return d.item, true
}

// AggregateVisibleStock suma el stock del sistema de la lista filtrada. Solo informativo.
func (w *Workspace) AggregateVisibleStock() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := decimal.Zero
	for _, p := range w.visible() {
		total = total.Add(inventory.SystemStock(p, w.scope))
	}
	return total
}

// SelectedItems devuelve los ítems seleccionados en orden de catálogo, listos para
// guardar. Un producto seleccionado sin borrador se toma como contado igual al sistema.
func (w *Workspace) SelectedItems() (entity.Scope, []entity.InventoryItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failure != nil {
		return w.scope, nil, w.failure
	}
	items := make([]entity.InventoryItem, 0, len(w.selected))
	for _, p := range w.catalog.Products {
		if _, ok := w.selected[p.ID]; !ok {
			continue
		}
		d, ok := w.drafts[p.ID]
		if !ok {
			d = &draft{item: entity.InventoryItem{ProductID: p.ID, SKU: p.SKU, ProductName: p.Name}}
		}
		work := *d
		w.recompute(&work, p)
		items = append(items, work.item)
	}
	return w.scope, items, nil
}

// ReplaceCatalog aplica un catálogo recargado: desbloquea el espacio, descarta
// selección y borradores de productos que ya no existen y recalcula el resto.
func (w *Workspace) ReplaceCatalog(cat *Catalog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cat == nil {
		return domain.ErrCatalogUnavailable
	}
	if !cat.ValidScope(w.scope) {
		return domain.ErrUnknownWarehouse
	}
	w.setCatalog(cat)
	for id := range w.drafts {
		if _, ok := w.products[id]; !ok {
			delete(w.drafts, id)
		}
	}
	for id := range w.selected {
		if _, ok := w.products[id]; !ok {
			delete(w.selected, id)
		}
	}
	w.failure = nil
	w.touchedAt = time.Now()
	w.recomputeAll()
	return nil
}

// Block bloquea el espacio hasta una recarga exitosa del catálogo.
func (w *Workspace) Block(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failure = err
}

// Snapshot copia el estado visible.
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	visible := w.visible()
	rows := make([]WorkspaceRow, 0, len(visible))
	total := decimal.Zero
	for _, p := range visible {
		system := inventory.SystemStock(p, w.scope)
		total = total.Add(system)
		row := WorkspaceRow{ProductID: p.ID, SKU: p.SKU, Name: p.Name, SystemStock: system}
		if d, ok := w.drafts[p.ID]; ok {
			item := d.item
			row.Item = &item
		}
		_, row.Selected = w.selected[p.ID]
		rows = append(rows, row)
	}
	return WorkspaceSnapshot{
		ID:            w.id,
		CompanyID:     w.companyID,
		UserID:        w.userID,
		Scope:         w.scope,
		Filter:        w.filter,
		Warehouses:    w.catalog.Warehouses,
		Rows:          rows,
		SelectedCount: len(w.selected),
		VisibleStock:  total,
		Blocked:       w.failure,
		TouchedAt:     w.touchedAt,
	}
}

// visible aplica el filtro sobre el catálogo. Requiere mu.
func (w *Workspace) visible() []*entity.Product {
	search := strings.ToLower(w.filter.Search)
	out := make([]*entity.Product, 0, len(w.catalog.Products))
	for _, p := range w.catalog.Products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if w.filter.VariancesOnly {
			d, ok := w.drafts[p.ID]
			if !ok || d.item.Variance.IsZero() {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// recompute toma una nueva instantánea del stock del sistema. Mientras el usuario no
// digite el conteo, el físico sigue al sistema. Requiere mu.
func (w *Workspace) recompute(d *draft, p *entity.Product) {
	if !d.counted {
		d.item.PhysicalCount = inventory.SystemStock(p, w.scope)
	}
	inventory.Recompute(&d.item, p, w.scope)
}

func (w *Workspace) recomputeAll() {
	for id, d := range w.drafts {
		w.recompute(d, w.products[id])
	}
}
