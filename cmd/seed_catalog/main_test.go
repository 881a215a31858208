package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/infrastructure/catalogcsv"
)

var company = uuid.MustParse("00000000-0000-0000-0000-000000000002")

func TestWriteSQL(t *testing.T) {
	rows, err := catalogcsv.ParseRows(strings.NewReader("B-2;Café;;7\nA-1;D'Oro;W1;2\nA-1;D'Oro;W1;1\n"))
	require.NoError(t, err)
	products := catalogcsv.Group(company, rows)
	require.Len(t, products, 2)

	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, products))
	sql := buf.String()
	assert.Contains(t, sql, "'D''Oro'")
	assert.Contains(t, sql, "VALUES ('"+products[1].ID+"', '"+company.String()+"', 'B-2', 'Café', 7, now(), now())")
	assert.Contains(t, sql, "VALUES ('"+products[0].ID+"', 'W1', 3, now())")
	assert.Contains(t, sql, "'A-1', 'D''Oro', NULL")
	assert.Equal(t, 1, strings.Count(sql, "INSERT INTO stock"))
}
