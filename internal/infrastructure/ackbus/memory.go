// Package ackbus implementa el canal de confirmación "inventory_printed" entre el
// renderizador del reporte y el núcleo del conteo.
package ackbus

import (
	"context"
	"sync"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
)

var _ inventory.AckBus = (*MemoryBus)(nil)

// MemoryBus bus en proceso. Una publicación sin suscriptores se pierde, igual que en Redis.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySub]struct{}
}

// NewMemoryBus crea un bus vacío.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*memorySub]struct{})}
}

// Publish entrega la confirmación a cada suscriptor del conteo sin bloquear.
func (b *MemoryBus) Publish(ctx context.Context, countID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[countID] {
		select {
		case s.ch <- struct{}{}:
		default: // ya tiene una confirmación sin leer
		}
	}
	return nil
}

// Subscribe registra un suscriptor para el conteo.
func (b *MemoryBus) Subscribe(ctx context.Context, countID string) (inventory.AckSubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &memorySub{bus: b, countID: countID, ch: make(chan struct{}, 1)}
	b.mu.Lock()
	if b.subs[countID] == nil {
		b.subs[countID] = make(map[*memorySub]struct{})
	}
	b.subs[countID][s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

// Subscribers número de suscriptores activos del conteo.
func (b *MemoryBus) Subscribers(countID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[countID])
}

type memorySub struct {
	bus     *MemoryBus
	countID string
	ch      chan struct{}
	once    sync.Once
}

func (s *memorySub) C() <-chan struct{} { return s.ch }

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.countID], s)
		if len(s.bus.subs[s.countID]) == 0 {
			delete(s.bus.subs, s.countID)
		}
		s.bus.mu.Unlock()
	})
	return nil
}
