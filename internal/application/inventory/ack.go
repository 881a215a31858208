package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// AckEventPrinted token del evento que emite el renderizador cuando el reporte del
// conteo quedó producido. No lleva más datos que el id del conteo.
const AckEventPrinted = "inventory_printed"

// AckSubscription suscripción de un solo disparo a la confirmación de un conteo.
type AckSubscription interface {
	C() <-chan struct{}
	Close() error
}

// AckBus canal de mensajes entre el renderizador (otro proceso o contexto) y el núcleo.
type AckBus interface {
	Publish(ctx context.Context, countID string) error
	Subscribe(ctx context.Context, countID string) (AckSubscription, error)
}

type countCloser interface {
	Close(ctx context.Context, in CloseInput) (*entity.InventoryCount, error)
}

// AckWatcher espera, con tiempo límite, la confirmación de impresión de cada conteo
// pendiente y entonces lo cierra. Un conteo tiene a lo sumo una espera activa por proceso.
type AckWatcher struct {
	bus     AckBus
	closer  countCloser
	timeout time.Duration
	log     *logger.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	awaiting map[string]struct{}
}

// NewAckWatcher construye el observador de confirmaciones.
func NewAckWatcher(bus AckBus, closer countCloser, timeout time.Duration, log *logger.Logger) *AckWatcher {
	if log == nil {
		log = logger.Nop()
	}
	base, cancel := context.WithCancel(context.Background())
	return &AckWatcher{
		bus:      bus,
		closer:   closer,
		timeout:  timeout,
		log:      log,
		base:     base,
		cancel:   cancel,
		awaiting: make(map[string]struct{}),
	}
}

// Watch arma la espera en segundo plano. La suscripción queda activa antes de
// retornar, así que una publicación posterior no se pierde. ctx solo acota la suscripción.
func (w *AckWatcher) Watch(ctx context.Context, companyID, userID, countID string) error {
	sub, err := w.arm(ctx, countID)
	if err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		_, _ = w.await(w.base, sub, companyID, userID, countID)
	}()
	return nil
}

// Await arma la espera y bloquea hasta el cierre, el tiempo límite o la cancelación de ctx.
func (w *AckWatcher) Await(ctx context.Context, companyID, userID, countID string) (*entity.InventoryCount, error) {
	sub, err := w.arm(ctx, countID)
	if err != nil {
		return nil, err
	}
	return w.await(ctx, sub, companyID, userID, countID)
}

// IsAwaiting indica si este proceso espera la confirmación del conteo.
func (w *AckWatcher) IsAwaiting(countID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.awaiting[countID]
	return ok
}

// Stop cancela las esperas en curso y aguarda a que terminen.
func (w *AckWatcher) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *AckWatcher) arm(ctx context.Context, countID string) (AckSubscription, error) {
	w.mu.Lock()
	if _, ok := w.awaiting[countID]; ok {
		w.mu.Unlock()
		return nil, domain.ErrAlreadyAwaiting
	}
	w.awaiting[countID] = struct{}{}
	w.mu.Unlock()

	sub, err := w.bus.Subscribe(ctx, countID)
	if err != nil {
		w.release(countID)
		return nil, err
	}
	return sub, nil
}

func (w *AckWatcher) release(countID string) {
	w.mu.Lock()
	delete(w.awaiting, countID)
	w.mu.Unlock()
}

func (w *AckWatcher) await(ctx context.Context, sub AckSubscription, companyID, userID, countID string) (*entity.InventoryCount, error) {
	defer w.release(countID)
	defer func() { _ = sub.Close() }()
	log := w.log.WithCount(companyID, countID)

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	select {
	case <-sub.C():
		return w.closeAcked(ctx, log, companyID, userID, countID)
	case <-timer.C:
		// Una confirmación que llegó junto con el vencimiento aún cuenta
		select {
		case <-sub.C():
			return w.closeAcked(ctx, log, companyID, userID, countID)
		default:
		}
		log.Warn().Dur("timeout", w.timeout).Msg("sin confirmación de impresión; el conteo sigue pendiente")
		return nil, domain.ErrAckTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *AckWatcher) closeAcked(ctx context.Context, log *logger.Logger, companyID, userID, countID string) (*entity.InventoryCount, error) {
	count, err := w.closer.Close(ctx, CloseInput{
		CompanyID: companyID,
		UserID:    userID,
		CountID:   countID,
		Mode:      entity.CloseModeAck,
	})
	switch {
	case err == nil:
		return count, nil
	case errors.Is(err, domain.ErrCountAlreadyClosed):
		log.Info().Msg("confirmación duplicada ignorada")
	default:
		log.Error().Err(err).Msg("no se pudo cerrar el conteo tras la confirmación")
	}
	return nil, err
}
