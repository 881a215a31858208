package ackbus_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/infrastructure/ackbus"
)

// Requiere Redis en localhost:6379; si no está, el test se omite.
const testRedisAddr = "localhost:6379"

func setupRedisBus(t *testing.T) *ackbus.RedisBus {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible en %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return ackbus.NewRedisBus(client, "test-conteo")
}

func TestRedisBus_Channel(t *testing.T) {
	bus := ackbus.NewRedisBus(redis.NewClient(&redis.Options{Addr: testRedisAddr}), "")
	assert.Equal(t, "inventario:inventory_printed:c-9", bus.Channel("c-9"))
}

func TestRedisBus_PublicaYRecibe(t *testing.T) {
	bus := setupRedisBus(t)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "c-1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, "c-1"))
	assert.True(t, receive(t, sub.C()))
}
