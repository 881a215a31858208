package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	s := nullable("W1")
	if assert.NotNil(t, s) {
		assert.Equal(t, "W1", deref(s))
	}
	assert.Equal(t, "", deref(nil))
}
