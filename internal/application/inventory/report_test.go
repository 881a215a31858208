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
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/ackbus"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/memory"
)

type reportEnv struct {
	store    *memory.Store
	lm       *inventory.LifecycleManager
	watcher  *inventory.AckWatcher
	renderer *fakeRenderer
	uc       *inventory.ReportUseCase
}

func newReportEnv(t *testing.T, bus inventory.AckBus) *reportEnv {
	t.Helper()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	w := inventory.NewAckWatcher(bus, lm, time.Second, nil)
	t.Cleanup(w.Stop)
	r := &fakeRenderer{}
	return &reportEnv{
		store:    s,
		lm:       lm,
		watcher:  w,
		renderer: r,
		uc:       inventory.NewReportUseCase(s.Counts(), s.Products(), s.Warehouses(), r, w, bus, nil),
	}
}

func TestRender_PublicaConfirmacionYCierra(t *testing.T) {
	ctx := context.Background()
	env := newReportEnv(t, ackbus.NewMemoryBus())
	count := savedCount(t, env.store, env.lm, "18")

	out, err := env.uc.Render(ctx, company, user, count.ID)
	require.NoError(t, err)
	assert.True(t, out.AckPublished)
	assert.Equal(t, "conteo_"+count.ID+".pdf", out.Filename)
	assert.Equal(t, "Todas las bodegas", env.renderer.last.WarehouseName)

	require.Eventually(t, func() bool {
		stored, _ := env.store.Counts().GetByID(ctx, count.ID)
		return stored.Status == entity.CountStatusCompleted
	}, time.Second, 5*time.Millisecond)

	// Reimprimir un conteo cerrado no vuelve a publicar
	out, err = env.uc.Render(ctx, company, user, count.ID)
	require.NoError(t, err)
	assert.False(t, out.AckPublished)
	assert.Equal(t, 2, env.renderer.calls)
	assert.Len(t, env.store.Movements(), 1)
}

func TestRender_FalloDelBusDejaPendiente(t *testing.T) {
	ctx := context.Background()
	env := newReportEnv(t, failingBus{AckBus: ackbus.NewMemoryBus()})
	count := savedCount(t, env.store, env.lm, "18")

	out, err := env.uc.Render(ctx, company, user, count.ID)
	require.NoError(t, err)
	assert.False(t, out.AckPublished)
	assert.NotEmpty(t, out.Content)

	stored, _ := env.store.Counts().GetByID(ctx, count.ID)
	assert.Equal(t, entity.CountStatusPending, stored.Status)
}

func TestRender_ErrorDelRenderizador(t *testing.T) {
	env := newReportEnv(t, ackbus.NewMemoryBus())
	count := savedCount(t, env.store, env.lm, "18")
	env.renderer.err = errors.New("fuente faltante")

	_, err := env.uc.Render(context.Background(), company, user, count.ID)
	require.Error(t, err)
	assert.False(t, env.watcher.IsAwaiting(count.ID))
}

func TestRender_NombreDeBodega(t *testing.T) {
	ctx := context.Background()
	env := newReportEnv(t, ackbus.NewMemoryBus())
	ws := openWorkspace(t, env.store, entity.WarehouseScope("W2"))
	require.NoError(t, ws.Select("P1"))
	count, err := env.lm.Save(ctx, ws, inventory.SaveInput{UserID: user})
	require.NoError(t, err)

	_, err = env.uc.Render(ctx, company, user, count.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sucursal Norte", env.renderer.last.WarehouseName)

	_, err = env.uc.Render(ctx, "otra", user, count.ID)
	assert.ErrorIs(t, err, domain.ErrCountNotFound)
}

func TestAcknowledge(t *testing.T) {
	ctx := context.Background()
	env := newReportEnv(t, ackbus.NewMemoryBus())
	count := savedCount(t, env.store, env.lm, "18")

	require.NoError(t, env.uc.Acknowledge(ctx, company, user, count.ID))
	require.Eventually(t, func() bool {
		stored, _ := env.store.Counts().GetByID(ctx, count.ID)
		return stored.Status == entity.CountStatusCompleted
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, env.uc.Acknowledge(ctx, company, user, count.ID), domain.ErrCountAlreadyClosed)
	assert.ErrorIs(t, env.uc.Acknowledge(ctx, company, user, "no-existe"), domain.ErrCountNotFound)
}
