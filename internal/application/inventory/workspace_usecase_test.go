package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/ackbus"
)

type brokenProducts struct{ repository.ProductRepository }

func (brokenProducts) ListWithStock(context.Context, string) ([]*entity.Product, error) {
	return nil, errors.New("conexión rechazada")
}

func TestWorkspaceUseCase_OpenYPropiedad(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	uc := inventory.NewWorkspaceUseCase(inventory.NewCatalogLoader(s.Products(), s.Warehouses()), newLifecycle(s), nil, time.Hour, nil)

	_, err := uc.Open(ctx, "", user, entity.ScopeGlobal)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	ws, err := uc.Open(ctx, company, user, entity.ScopeGlobal)
	require.NoError(t, err)

	got, err := uc.Get(company, user, ws.ID())
	require.NoError(t, err)
	assert.Same(t, ws, got)

	_, err = uc.Get(company, "otro-usuario", ws.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.Discard(company, user, ws.ID()))
	_, err = uc.Get(company, user, ws.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspaceUseCase_CatalogoNoDisponible(t *testing.T) {
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	loader := inventory.NewCatalogLoader(brokenProducts{s.Products()}, s.Warehouses())
	uc := inventory.NewWorkspaceUseCase(loader, newLifecycle(s), nil, time.Hour, nil)

	_, err := uc.Open(context.Background(), company, user, entity.ScopeGlobal)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestWorkspaceUseCase_SaveArmaLaEspera(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	bus := ackbus.NewMemoryBus()
	w := inventory.NewAckWatcher(bus, lm, time.Second, nil)
	defer w.Stop()
	uc := inventory.NewWorkspaceUseCase(inventory.NewCatalogLoader(s.Products(), s.Warehouses()), lm, w, time.Hour, nil)

	ws, err := uc.Open(ctx, company, user, entity.ScopeGlobal)
	require.NoError(t, err)

	_, err = uc.Save(ctx, company, user, ws.ID(), inventory.SaveInput{})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	_, err = uc.Get(company, user, ws.ID())
	require.NoError(t, err, "un guardado fallido conserva el espacio")

	require.NoError(t, ws.Select("P1"))
	count, err := uc.Save(ctx, company, user, ws.ID(), inventory.SaveInput{})
	require.NoError(t, err)
	assert.Equal(t, user, count.CreatedBy)
	assert.True(t, w.IsAwaiting(count.ID))

	_, err = uc.Get(company, user, ws.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspaceUseCase_Sweep(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	uc := inventory.NewWorkspaceUseCase(inventory.NewCatalogLoader(s.Products(), s.Warehouses()), newLifecycle(s), nil, time.Minute, nil)

	ws, err := uc.Open(ctx, company, user, entity.ScopeGlobal)
	require.NoError(t, err)

	assert.Equal(t, 0, uc.Sweep(time.Now()))
	assert.Equal(t, 1, uc.Sweep(ws.TouchedAt().Add(2*time.Minute)))
	_, err = uc.Get(company, user, ws.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspaceUseCase_ReloadDesbloquea(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	uc := inventory.NewWorkspaceUseCase(inventory.NewCatalogLoader(s.Products(), s.Warehouses()), newLifecycle(s), nil, time.Hour, nil)
	ws, err := uc.Open(ctx, company, user, entity.ScopeGlobal)
	require.NoError(t, err)

	s.PutProduct(legacy("P1", "A-1", "Arroz", "25"))
	ws, err = uc.Reload(ctx, company, user, ws.ID())
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(ws.Snapshot().Rows[0].SystemStock))

	ws.Block(domain.ErrCatalogUnavailable)
	require.Error(t, ws.Select("P1"))
	_, err = uc.Reload(ctx, company, user, ws.ID())
	require.NoError(t, err)
	assert.NoError(t, ws.Select("P1"))
}
