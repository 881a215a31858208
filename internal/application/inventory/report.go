package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// CountReport conteo finalizado listo para el renderizador externo.
type CountReport struct {
	Count         *entity.InventoryCount
	WarehouseName string // "Todas las bodegas" si el alcance es global
}

// CountReportRenderer produce el documento legible del conteo.
type CountReportRenderer interface {
	RenderCountReport(ctx context.Context, report *CountReport) ([]byte, error)
}

// RenderedReport resultado de la impresión.
type RenderedReport struct {
	Content      []byte
	Filename     string
	AckPublished bool // se emitió inventory_printed para un conteo pendiente
}

// ReportUseCase entrega el conteo al renderizador y emite la confirmación de impresión.
type ReportUseCase struct {
	countRepo     repository.InventoryCountRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	renderer      CountReportRenderer
	watcher       *AckWatcher
	bus           AckBus
	log           *logger.Logger
}

// NewReportUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReportUseCase(
	countRepo repository.InventoryCountRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	renderer CountReportRenderer,
	watcher *AckWatcher,
	bus AckBus,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		countRepo:     countRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		renderer:      renderer,
		watcher:       watcher,
		bus:           bus,
		log:           log,
	}
}

// Render genera el reporte. Si el conteo sigue pendiente, publica inventory_printed
// para que el cierre aplique el stock; un fallo al publicar deja el conteo pendiente
// y se informa en AckPublished.
func (uc *ReportUseCase) Render(ctx context.Context, companyID, userID, countID string) (*RenderedReport, error) {
	report, err := uc.load(ctx, companyID, countID)
	if err != nil {
		return nil, err
	}
	content, err := uc.renderer.RenderCountReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("reporte: generación fallida: %w", err)
	}
	out := &RenderedReport{
		Content:  content,
		Filename: fmt.Sprintf("conteo_%s.pdf", report.Count.ID),
	}
	if !report.Count.IsPending() {
		return out, nil
	}
	if err := uc.publish(ctx, companyID, userID, countID); err != nil {
		uc.log.WithCount(companyID, countID).Error().Err(err).Msg("no se pudo emitir la confirmación de impresión")
		return out, nil
	}
	out.AckPublished = true
	return out, nil
}

// Acknowledge recibe la confirmación de un renderizador que corre fuera del proceso
// y la reenvía por el bus hacia la espera del conteo.
func (uc *ReportUseCase) Acknowledge(ctx context.Context, companyID, userID, countID string) error {
	count, err := uc.countRepo.GetByID(ctx, countID)
	if err != nil {
		return err
	}
	if count == nil || count.CompanyID != companyID {
		return domain.ErrCountNotFound
	}
	if !count.IsPending() {
		return domain.ErrCountAlreadyClosed
	}
	return uc.publish(ctx, companyID, userID, countID)
}

func (uc *ReportUseCase) publish(ctx context.Context, companyID, userID, countID string) error {
	if uc.watcher != nil {
		if err := uc.watcher.Watch(ctx, companyID, userID, countID); err != nil && !errors.Is(err, domain.ErrAlreadyAwaiting) {
			return err
		}
	}
	return uc.bus.Publish(ctx, countID)
}

func (uc *ReportUseCase) load(ctx context.Context, companyID, countID string) (*CountReport, error) {
	count, err := uc.countRepo.GetByID(ctx, countID)
	if err != nil {
		return nil, fmt.Errorf("reporte: obtener conteo: %w", err)
	}
	if count == nil || count.CompanyID != companyID {
		return nil, domain.ErrCountNotFound
	}

	// Completar SKU/nombre de ítems guardados sin ellos (conteos antiguos)
	for i := range count.Items {
		it := &count.Items[i]
		if it.SKU != "" && it.ProductName != "" {
			continue
		}
		if p, pErr := uc.productRepo.GetByID(ctx, it.ProductID); pErr == nil && p != nil {
			it.SKU, it.ProductName = p.SKU, p.Name
		} else if it.ProductName == "" {
			it.ProductName = "Producto " + it.ProductID
		}
	}

	report := &CountReport{Count: count, WarehouseName: "Todas las bodegas"}
	if !count.Scope.IsGlobal() {
		report.WarehouseName = count.Scope.WarehouseID()
		if w, wErr := uc.warehouseRepo.GetByID(ctx, count.Scope.WarehouseID()); wErr == nil && w != nil {
			report.WarehouseName = w.Name
		}
	}
	return report, nil
}
