package inventory_test

import (
	"context"
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

func savedCount(t *testing.T, s *memory.Store, lm *inventory.LifecycleManager, physical string) *entity.InventoryCount {
	t.Helper()
	ws := openWorkspace(t, s, entity.ScopeGlobal)
	require.NoError(t, ws.Select("P1"))
	_, err := ws.SetPhysicalCount("P1", dec(physical))
	require.NoError(t, err)
	count, err := lm.Save(context.Background(), ws, inventory.SaveInput{UserID: user})
	require.NoError(t, err)
	return count
}

func TestAckWatcher_ConfirmacionCierraElConteo(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	bus := ackbus.NewMemoryBus()
	w := inventory.NewAckWatcher(bus, lm, time.Second, nil)
	defer w.Stop()
	count := savedCount(t, s, lm, "18")

	done := make(chan struct{})
	var (
		closed *entity.InventoryCount
		err    error
	)
	go func() {
		defer close(done)
		closed, err = w.Await(ctx, company, user, count.ID)
	}()
	require.Eventually(t, func() bool { return bus.Subscribers(count.ID) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, w.IsAwaiting(count.ID))

	require.NoError(t, bus.Publish(ctx, count.ID))
	<-done
	require.NoError(t, err)
	assert.Equal(t, entity.CountStatusCompleted, closed.Status)
	assert.False(t, w.IsAwaiting(count.ID))
	assert.Equal(t, 0, bus.Subscribers(count.ID))

	_, qty := stockOf(t, s, "P1")
	assert.True(t, dec("18").Equal(qty))
}

func TestAckWatcher_TiempoLimiteDejaPendiente(t *testing.T) {
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	w := inventory.NewAckWatcher(ackbus.NewMemoryBus(), lm, 20*time.Millisecond, nil)
	defer w.Stop()
	count := savedCount(t, s, lm, "18")

	_, err := w.Await(context.Background(), company, user, count.ID)
	assert.ErrorIs(t, err, domain.ErrAckTimeout)

	stored, _ := s.Counts().GetByID(context.Background(), count.ID)
	assert.Equal(t, entity.CountStatusPending, stored.Status)
	_, qty := stockOf(t, s, "P1")
	assert.True(t, dec("20").Equal(qty))
}

func TestAckWatcher_UnaEsperaPorConteo(t *testing.T) {
	ctx := context.Background()
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	bus := ackbus.NewMemoryBus()
	w := inventory.NewAckWatcher(bus, lm, time.Second, nil)
	count := savedCount(t, s, lm, "18")

	require.NoError(t, w.Watch(ctx, company, user, count.ID))
	assert.ErrorIs(t, w.Watch(ctx, company, user, count.ID), domain.ErrAlreadyAwaiting)
	assert.Equal(t, 1, bus.Subscribers(count.ID))

	// Dos confirmaciones seguidas cierran una sola vez
	require.NoError(t, bus.Publish(ctx, count.ID))
	require.NoError(t, bus.Publish(ctx, count.ID))
	require.Eventually(t, func() bool { return !w.IsAwaiting(count.ID) }, time.Second, 5*time.Millisecond)
	w.Stop()

	stored, _ := s.Counts().GetByID(ctx, count.ID)
	assert.Equal(t, entity.CountStatusCompleted, stored.Status)
	assert.Len(t, s.Movements(), 1)
}

func TestAckWatcher_StopCancelaEsperas(t *testing.T) {
	s := newStore(legacy("P1", "A-1", "Arroz", "20"))
	lm := newLifecycle(s)
	bus := ackbus.NewMemoryBus()
	w := inventory.NewAckWatcher(bus, lm, time.Hour, nil)
	count := savedCount(t, s, lm, "18")

	require.NoError(t, w.Watch(context.Background(), company, user, count.ID))
	w.Stop()
	assert.False(t, w.IsAwaiting(count.ID))
	assert.Equal(t, 0, bus.Subscribers(count.ID))
}

// firedBus entrega la confirmación en el mismo instante en que se suscribe.
type firedBus struct{}

type firedSub struct{ ch chan struct{} }

func (s firedSub) C() <-chan struct{} { return s.ch }
func (firedSub) Close() error { return nil }

func (firedBus) Publish(context.Context, string) error { return nil }

func (firedBus) Subscribe(context.Context, string) (inventory.AckSubscription, error) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return firedSub{ch: ch}, nil
}

func TestAckWatcher_ConfirmacionSimultaneaAlVencimientoCierra(t *testing.T) {
	// Con tiempo límite 0 el timer y la confirmación quedan listos a la vez
	for i := 0; i < 20; i++ {
		s := newStore(legacy("P1", "A-1", "Arroz", "20"))
		lm := newLifecycle(s)
		w := inventory.NewAckWatcher(firedBus{}, lm, 0, nil)
		count := savedCount(t, s, lm, "18")

		closed, err := w.Await(context.Background(), company, user, count.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.CountStatusCompleted, closed.Status)
		w.Stop()
	}
}
