package catalogcsv_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/conteo-inventario/internal/infrastructure/catalogcsv"
)

var company = uuid.MustParse("00000000-0000-0000-0000-000000000002")

func TestReadFile_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("sku;nombre;bodega;cantidad\nA-1;Azúcar morena;W1;12,5\nA-1;Azúcar morena;W2;3\nB-2;Café;;7\n")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(path, []byte(latin1), 0o600))

	products, err := catalogcsv.ReadFile(path, company)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Azúcar morena", products[0].Name)
	assert.Equal(t, company.String(), products[0].CompanyID)
	require.Len(t, products[0].Stocks, 2)
	assert.Equal(t, "W1", products[0].Stocks[0].WarehouseID)
	assert.Equal(t, "12.5", products[0].Stocks[0].Quantity.Decimal.String())
	assert.False(t, products[0].Stock.Valid)

	assert.Equal(t, "Café", products[1].Name)
	assert.Empty(t, products[1].Stocks)
	require.True(t, products[1].Stock.Valid)
	assert.Equal(t, "7", products[1].Stock.Decimal.String())

	assert.Equal(t, []string{"W1", "W2"}, catalogcsv.Warehouses(products))

	_, err = catalogcsv.ReadFile(filepath.Join(t.TempDir(), "no-existe.csv"), company)
	assert.ErrorContains(t, err, "abrir CSV")
}

func TestParseRows_Errores(t *testing.T) {
	_, err := catalogcsv.ParseRows(strings.NewReader("A-1;Arroz;W1;-3\n"))
	assert.ErrorContains(t, err, "cantidad inválida")

	_, err = catalogcsv.ParseRows(strings.NewReader("A-1;Arroz;W1;1,00001\n"))
	assert.ErrorContains(t, err, "cantidad inválida")

	_, err = catalogcsv.ParseRows(strings.NewReader(";Arroz;W1;3\n"))
	assert.ErrorContains(t, err, "sku vacío")

	_, err = catalogcsv.ParseRows(strings.NewReader("A-1;Arroz;3\n"))
	assert.Error(t, err)
}

func TestGroup_SumaYDerivaIDs(t *testing.T) {
	rows, err := catalogcsv.ParseRows(strings.NewReader("B-2;Café;;7\nB-2;Café;;1\nA-1;D'Oro;W1;2\nA-1;D'Oro;W1;1\n"))
	require.NoError(t, err)

	products := catalogcsv.Group(company, rows)
	require.Len(t, products, 2)
	assert.Equal(t, "A-1", products[0].SKU)
	require.Len(t, products[0].Stocks, 1)
	assert.Equal(t, "3", products[0].Stocks[0].Quantity.Decimal.String())
	assert.Equal(t, products[0].ID, products[0].Stocks[0].ProductID)
	assert.Equal(t, "8", products[1].Stock.Decimal.String())

	// Mismo SKU, mismo ID
	again := catalogcsv.Group(company, rows)
	assert.Equal(t, products[0].ID, again[0].ID)
	assert.Equal(t, uuid.NewSHA1(company, []byte("A-1")).String(), products[0].ID)
}
