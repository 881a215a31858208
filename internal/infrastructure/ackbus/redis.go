package ackbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
)

var _ inventory.AckBus = (*RedisBus)(nil)

// RedisBus publica y escucha confirmaciones en canales Redis
// "<prefijo>:inventory_printed:<countID>". Permite que el renderizador corra en otro proceso.
type RedisBus struct {
	client *redis.Client
	prefix string
}

// NewRedisBus crea el bus sobre un cliente ya configurado.
func NewRedisBus(client *redis.Client, prefix string) *RedisBus {
	if prefix == "" {
		prefix = "inventario"
	}
	return &RedisBus{client: client, prefix: prefix}
}

// Channel nombre del canal Redis del conteo.
func (b *RedisBus) Channel(countID string) string {
	return fmt.Sprintf("%s:%s:%s", b.prefix, inventory.AckEventPrinted, countID)
}

func (b *RedisBus) Publish(ctx context.Context, countID string) error {
	if err := b.client.Publish(ctx, b.Channel(countID), inventory.AckEventPrinted).Err(); err != nil {
		return fmt.Errorf("publicar confirmación: %w", err)
	}
	return nil
}

// Subscribe retorna cuando Redis confirmó la suscripción.
func (b *RedisBus) Subscribe(ctx context.Context, countID string) (inventory.AckSubscription, error) {
	ps := b.client.Subscribe(ctx, b.Channel(countID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("suscribir confirmación: %w", err)
	}
	s := &redisSub{ps: ps, ch: make(chan struct{}, 1), done: make(chan struct{})}
	go s.forward()
	return s, nil
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *redisSub) forward() {
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if msg.Payload != inventory.AckEventPrinted {
				continue
			}
			select {
			case s.ch <- struct{}{}:
			default:
			}
		}
	}
}

func (s *redisSub) C() <-chan struct{} { return s.ch }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
