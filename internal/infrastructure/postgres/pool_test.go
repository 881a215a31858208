package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIPv4_Literales(t *testing.T) {
	ip, ok := lookupIPv4(context.Background(), "127.0.0.1")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1", ip)

	_, ok = lookupIPv4(context.Background(), "::1")
	assert.False(t, ok)
}
