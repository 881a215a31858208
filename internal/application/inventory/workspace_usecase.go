package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// WorkspaceUseCase registro de espacios de conteo en memoria, uno por sesión.
// Nada se persiste hasta Save; descartar o dejar expirar un espacio no deja rastro.
type WorkspaceUseCase struct {
	loader    *CatalogLoader
	lifecycle *LifecycleManager
	watcher   *AckWatcher
	ttl       time.Duration
	log       *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Workspace
}

// NewWorkspaceUseCase construye el caso de uso. watcher puede ser nil (sin espera de confirmación).
func NewWorkspaceUseCase(
	loader *CatalogLoader,
	lifecycle *LifecycleManager,
	watcher *AckWatcher,
	ttl time.Duration,
	log *logger.Logger,
) *WorkspaceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &WorkspaceUseCase{
		loader:    loader,
		lifecycle: lifecycle,
		watcher:   watcher,
		ttl:       ttl,
		log:       log,
		sessions:  make(map[string]*Workspace),
	}
}

// Open carga el catálogo completo y abre un espacio. Si el catálogo no carga, no se abre nada.
func (uc *WorkspaceUseCase) Open(ctx context.Context, companyID, userID string, scope entity.Scope) (*Workspace, error) {
	if companyID == "" || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	cat, err := uc.loader.Load(ctx, companyID)
	if err != nil {
		uc.log.Error().Err(err).Str("company_id", companyID).Msg("no se pudo abrir el espacio de conteo")
		return nil, err
	}
	ws, err := NewWorkspace(uuid.New().String(), companyID, userID, scope, cat)
	if err != nil {
		return nil, err
	}
	uc.mu.Lock()
	uc.sessions[ws.ID()] = ws
	uc.mu.Unlock()
	return ws, nil
}

// Get devuelve el espacio si pertenece a la empresa y al usuario.
func (uc *WorkspaceUseCase) Get(companyID, userID, id string) (*Workspace, error) {
	uc.mu.Lock()
	ws, ok := uc.sessions[id]
	uc.mu.Unlock()
	if !ok || ws.CompanyID() != companyID || ws.UserID() != userID {
		return nil, domain.ErrNotFound
	}
	return ws, nil
}

// Reload vuelve a leer el catálogo. Si falla, el espacio queda bloqueado hasta una
// recarga exitosa.
func (uc *WorkspaceUseCase) Reload(ctx context.Context, companyID, userID, id string) (*Workspace, error) {
	ws, err := uc.Get(companyID, userID, id)
	if err != nil {
		return nil, err
	}
	cat, err := uc.loader.Load(ctx, companyID)
	if err != nil {
		ws.Block(err)
		uc.log.Error().Err(err).Str("workspace_id", id).Msg("recarga de catálogo fallida, espacio bloqueado")
		return nil, err
	}
	if err := ws.ReplaceCatalog(cat); err != nil {
		return nil, err
	}
	return ws, nil
}

// Save guarda el espacio como conteo pending, lo retira del registro y arma la espera
// de confirmación. Si el guardado falla, el borrador queda intacto para reintentar.
func (uc *WorkspaceUseCase) Save(ctx context.Context, companyID, userID, id string, in SaveInput) (*entity.InventoryCount, error) {
	ws, err := uc.Get(companyID, userID, id)
	if err != nil {
		return nil, err
	}
	in.UserID = userID
	count, err := uc.lifecycle.Save(ctx, ws, in)
	if err != nil {
		return nil, err
	}
	uc.remove(id)

	if uc.watcher != nil {
		if err := uc.watcher.Watch(ctx, companyID, userID, count.ID); err != nil && !errors.Is(err, domain.ErrAlreadyAwaiting) {
			// El conteo ya está guardado; la confirmación podrá rearmarse al imprimir.
			uc.log.WithCount(companyID, count.ID).Error().Err(err).Msg("no se pudo armar la espera de confirmación")
		}
	}
	return count, nil
}

// Discard abandona el espacio sin efectos persistidos.
func (uc *WorkspaceUseCase) Discard(companyID, userID, id string) error {
	if _, err := uc.Get(companyID, userID, id); err != nil {
		return err
	}
	uc.remove(id)
	return nil
}

// Sweep descarta los espacios inactivos por más de ttl. Devuelve cuántos eliminó.
func (uc *WorkspaceUseCase) Sweep(now time.Time) int {
	if uc.ttl <= 0 {
		return 0
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	n := 0
	for id, ws := range uc.sessions {
		if now.Sub(ws.TouchedAt()) > uc.ttl {
			delete(uc.sessions, id)
			n++
		}
	}
	return n
}

// Run barre periódicamente los espacios expirados hasta que ctx termine.
func (uc *WorkspaceUseCase) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := uc.Sweep(now); n > 0 {
				uc.log.Info().Int("discarded", n).Msg("espacios de conteo expirados descartados")
			}
		}
	}
}

func (uc *WorkspaceUseCase) remove(id string) {
	uc.mu.Lock()
	delete(uc.sessions, id)
	uc.mu.Unlock()
}
