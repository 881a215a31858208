package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// LifecycleManager dueño del protocolo guardar → confirmar impresión → cerrar.
// Close es la única operación que escribe stock, y lo hace una sola vez por conteo.
type LifecycleManager struct {
	txRunner  TxRunner
	countRepo repository.InventoryCountRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewLifecycleManager construye el gestor del ciclo de vida.
func NewLifecycleManager(txRunner TxRunner, countRepo repository.InventoryCountRepository, log *logger.Logger) *LifecycleManager {
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleManager{txRunner: txRunner, countRepo: countRepo, log: log, now: time.Now}
}

// SaveInput datos del guardado que no vienen del espacio de conteo.
type SaveInput struct {
	UserID    string
	DateRange string // informativo, no condiciona la lógica
}

// CloseInput identifica el conteo a cerrar y cómo.
type CloseInput struct {
	CompanyID string
	UserID    string
	CountID   string
	Mode      string // entity.CloseModeAck | entity.CloseModeManual
	Reason    string
}

// Save persiste los ítems seleccionados del espacio como un conteo pending.
// Congela SystemStock, TotalProducts y TotalVariances; los borradores no seleccionados
// se descartan. Una selección vacía se rechaza sin tocar la persistencia.
func (m *LifecycleManager) Save(ctx context.Context, ws *Workspace, in SaveInput) (*entity.InventoryCount, error) {
	if ws == nil {
		return nil, domain.ErrInvalidInput
	}
	scope, items, err := ws.SelectedItems()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptySelection
	}

	count := &entity.InventoryCount{
		ID:             uuid.New().String(),
		CompanyID:      ws.CompanyID(),
		DateRange:      strings.TrimSpace(in.DateRange),
		Scope:          scope,
		Status:         entity.CountStatusPending,
		Items:          items,
		TotalProducts:  len(items),
		TotalVariances: inventory.CountVariances(items),
		CreatedBy:      in.UserID,
		CreatedAt:      m.now(),
	}

	err = m.txRunner.Run(ctx, func(
		countRepo repository.InventoryCountRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.InventoryMovementRepository,
	) error {
		return countRepo.Create(ctx, count)
	})
	if err != nil {
		return nil, fmt.Errorf("guardar conteo: %w", err)
	}

	m.log.WithCount(count.CompanyID, count.ID).Info().
		Str("scope", scope.String()).
		Int("total_products", count.TotalProducts).
		Int("total_variances", count.TotalVariances).
		Msg("conteo guardado, pendiente de confirmación de impresión")
	return count, nil
}

// Close aplica el conteo al stock y lo marca completed en una sola transacción.
// Rechaza con domain.ErrCountNotFound o domain.ErrCountAlreadyClosed; cualquier otro
// error revierte todo y deja el conteo en pending, por lo que reintentar es seguro.
func (m *LifecycleManager) Close(ctx context.Context, in CloseInput) (*entity.InventoryCount, error) {
	if in.CountID == "" {
		return nil, domain.ErrCountNotFound
	}
	if in.Mode == "" {
		in.Mode = entity.CloseModeAck
	}
	now := m.now()
	log := m.log.WithCount(in.CompanyID, in.CountID)

	var closed *entity.InventoryCount
	err := m.txRunner.Run(ctx, func(
		countRepo repository.InventoryCountRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		// Bloquea el encabezado: dos cierres concurrentes se serializan aquí
		count, err := countRepo.GetForUpdate(ctx, in.CountID)
		if err != nil {
			return err
		}
		if count == nil || count.CompanyID != in.CompanyID {
			return domain.ErrCountNotFound
		}
		if !count.IsPending() {
			return domain.ErrCountAlreadyClosed
		}

		a := applier{stockRepo: stockRepo, productRepo: productRepo, movRepo: movRepo, count: count, userID: in.UserID, now: now, log: log}
		for _, item := range count.Items {
			if err := a.apply(ctx, item); err != nil {
				return fmt.Errorf("aplicar %s: %w", item.ProductID, err)
			}
		}

		closure := repository.CountClosure{ClosedBy: in.UserID, ClosedAt: now, Mode: in.Mode, Reason: in.Reason}
		if err := countRepo.MarkCompleted(ctx, count.ID, closure); err != nil {
			return err
		}
		count.Status = entity.CountStatusCompleted
		count.ClosedBy = in.UserID
		count.ClosedAt = &now
		count.CloseMode = in.Mode
		count.CloseReason = in.Reason
		closed = count
		return nil
	})
	if err != nil {
		if domain.IsProtocolError(err) {
			log.Warn().Err(err).Str("mode", in.Mode).Msg("cierre rechazado")
			return nil, err
		}
		log.Error().Err(err).Msg("cierre fallido, el conteo sigue pendiente")
		return nil, fmt.Errorf("cerrar conteo: %w", err)
	}

	log.Info().Str("mode", in.Mode).Int("items", len(closed.Items)).Msg("conteo cerrado, stock actualizado")
	return closed, nil
}

// ForceClose cierre manual para conteos cuya confirmación de impresión nunca llegó.
// Exige motivo y respeta las mismas reglas de Close.
func (m *LifecycleManager) ForceClose(ctx context.Context, companyID, userID, countID, reason string) (*entity.InventoryCount, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: el cierre manual requiere un motivo", domain.ErrInvalidInput)
	}
	return m.Close(ctx, CloseInput{
		CompanyID: companyID,
		UserID:    userID,
		CountID:   countID,
		Mode:      entity.CloseModeManual,
		Reason:    reason,
	})
}

// Get obtiene un conteo de la empresa.
func (m *LifecycleManager) Get(ctx context.Context, companyID, countID string) (*entity.InventoryCount, error) {
	count, err := m.countRepo.GetByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	if count == nil || count.CompanyID != companyID {
		return nil, domain.ErrCountNotFound
	}
	return count, nil
}

// List lista conteos de la empresa, más recientes primero.
func (m *LifecycleManager) List(ctx context.Context, companyID string, filter repository.CountFilter) ([]*entity.InventoryCount, error) {
	switch filter.Status {
	case "", entity.CountStatusPending, entity.CountStatusCompleted:
	default:
		return nil, domain.ErrInvalidInput
	}
	return m.countRepo.ListByCompany(ctx, companyID, filter)
}

// applier escribe el físico contado en el stock del alcance del conteo.
type applier struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	count       *entity.InventoryCount
	userID      string
	now         time.Time
	log         *logger.Logger
}

func (a applier) apply(ctx context.Context, item entity.InventoryItem) error {
	if !a.count.Scope.IsGlobal() {
		return a.applyWarehouse(ctx, item, a.count.Scope.WarehouseID())
	}
	records, err := a.stockRepo.ListByProductForUpdate(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return a.applyLegacy(ctx, item)
	}
	return a.applyGlobal(ctx, item, records)
}

// applyWarehouse sobrescribe el registro de la bodega del conteo. Si el producto aún no
// tiene registros por bodega, su stock heredado se traslada primero a esta bodega para
// que el agregado no pierda unidades sin rastro.
func (a applier) applyWarehouse(ctx context.Context, item entity.InventoryItem, warehouseID string) error {
	current, err := a.stockRepo.GetForUpdate(ctx, item.ProductID, warehouseID)
	if err != nil {
		return err
	}
	previous := decimal.Zero
	if current != nil {
		previous = current.Qty()
	}
	a.warnDrift(item, previous)

	if current == nil {
		product, err := a.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			a.log.Warn().Str("product_id", item.ProductID).Msg("producto inexistente al cerrar, se omite")
			return nil
		}
		if len(product.Stocks) == 0 && product.Stock.Valid {
			if previous, err = a.moveLegacy(ctx, product, warehouseID); err != nil {
				return err
			}
			current = &entity.WarehouseStock{ProductID: item.ProductID, WarehouseID: warehouseID}
		}
	}

	if previous.Equal(item.PhysicalCount) && (current != nil || item.PhysicalCount.IsZero()) {
		return nil
	}
	stock := &entity.WarehouseStock{
		ProductID:   item.ProductID,
		WarehouseID: warehouseID,
		Quantity:    decimal.NewNullDecimal(item.PhysicalCount),
		UpdatedAt:   a.now,
	}
	if err := a.stockRepo.Upsert(ctx, stock); err != nil {
		return err
	}
	return a.record(ctx, entity.MovementTypeADJUSTMENT, item.ProductID, warehouseID, previous, item.PhysicalCount)
}

// moveLegacy pasa el stock heredado a la bodega indicada y deja en 0 el heredado, con un
// movimiento de salida y otro de entrada. Devuelve la cantidad trasladada.
func (a applier) moveLegacy(ctx context.Context, product *entity.Product, warehouseID string) (decimal.Decimal, error) {
	legacy := inventory.NormalizeQuantity(product.Stock)
	if err := a.stockRepo.Upsert(ctx, &entity.WarehouseStock{
		ProductID:   product.ID,
		WarehouseID: warehouseID,
		Quantity:    decimal.NewNullDecimal(legacy),
		UpdatedAt:   a.now,
	}); err != nil {
		return decimal.Zero, err
	}
	if err := a.productRepo.UpdateLegacyStock(ctx, product.ID, decimal.Zero); err != nil {
		return decimal.Zero, err
	}
	if legacy.IsZero() {
		return legacy, nil
	}
	if err := a.record(ctx, entity.MovementTypeTRANSFER, product.ID, "", legacy, decimal.Zero); err != nil {
		return decimal.Zero, err
	}
	if err := a.record(ctx, entity.MovementTypeTRANSFER, product.ID, warehouseID, decimal.Zero, legacy); err != nil {
		return decimal.Zero, err
	}
	a.log.Info().
		Str("product_id", product.ID).
		Str("warehouse_id", warehouseID).
		Str("quantity", legacy.String()).
		Msg("stock heredado trasladado a la bodega del conteo")
	return legacy, nil
}

// applyGlobal reparte el conteo entre bodegas para que el agregado sea el físico.
func (a applier) applyGlobal(ctx context.Context, item entity.InventoryItem, records []entity.WarehouseStock) error {
	live := decimal.Zero
	for _, r := range records {
		live = live.Add(r.Qty())
	}
	a.warnDrift(item, live)

	updated := inventory.DistributeGlobal(records, item.PhysicalCount)
	for i := range updated {
		previous, next := records[i].Qty(), updated[i].Qty()
		if previous.Equal(next) && records[i].Quantity.Valid {
			continue
		}
		updated[i].UpdatedAt = a.now
		if err := a.stockRepo.Upsert(ctx, &updated[i]); err != nil {
			return err
		}
		if previous.Equal(next) {
			continue
		}
		if err := a.record(ctx, entity.MovementTypeADJUSTMENT, item.ProductID, updated[i].WarehouseID, previous, next); err != nil {
			return err
		}
	}
	return nil
}

// applyLegacy sobrescribe el stock heredado de un producto sin bodegas.
func (a applier) applyLegacy(ctx context.Context, item entity.InventoryItem) error {
	product, err := a.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		// El producto se eliminó del catálogo después de guardar: no hay stock que ajustar.
		a.log.Warn().Str("product_id", item.ProductID).Msg("producto inexistente al cerrar, se omite")
		return nil
	}
	previous := inventory.NormalizeQuantity(product.Stock)
	a.warnDrift(item, previous)
	if previous.Equal(item.PhysicalCount) {
		return nil
	}
	if err := a.productRepo.UpdateLegacyStock(ctx, item.ProductID, item.PhysicalCount); err != nil {
		return err
	}
	return a.record(ctx, entity.MovementTypeADJUSTMENT, item.ProductID, "", previous, item.PhysicalCount)
}

func (a applier) record(ctx context.Context, movementType, productID, warehouseID string, previous, next decimal.Decimal) error {
	return a.movRepo.Create(ctx, &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TransactionID: a.count.ID,
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Type:          movementType,
		Quantity:      next.Sub(previous),
		PreviousQty:   previous,
		NewQty:        next,
		Date:          a.now,
		CreatedBy:     a.userID,
	})
}

// warnDrift avisa si el stock cambió desde que se guardó el conteo. El cierre gana igual.
func (a applier) warnDrift(item entity.InventoryItem, live decimal.Decimal) {
	if live.Equal(item.SystemStock) {
		return
	}
	a.log.Warn().
		Str("product_id", item.ProductID).
		Str("snapshot", item.SystemStock.String()).
		Str("live", live.String()).
		Msg("el stock cambió desde que se guardó el conteo; se sobrescribe con el físico")
}
