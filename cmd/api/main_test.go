package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/pkg/config"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

const seedCompany = "00000000-0000-0000-0000-000000000002"

func TestOpenMemory_CargaCatalogo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(path, []byte("sku;nombre;bodega;cantidad\nA-1;Arroz;W1;4\nB-2;Frijol;;7\n"), 0o600))

	s, err := openMemory(config.AppConfig{SeedFile: path, SeedCompanyID: seedCompany}, logger.Nop())
	require.NoError(t, err)

	products, err := s.Products().ListWithStock(context.Background(), seedCompany)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A-1", products[0].SKU)
	require.Len(t, products[0].Stocks, 1)
	assert.Equal(t, "7", products[1].Stock.Decimal.String())

	warehouses, err := s.Warehouses().ListByCompany(context.Background(), seedCompany)
	require.NoError(t, err)
	require.Len(t, warehouses, 1)
	assert.Equal(t, "W1", warehouses[0].ID)
}

func TestOpenMemory_SinArchivoArrancaVacio(t *testing.T) {
	s, err := openMemory(config.AppConfig{}, logger.Nop())
	require.NoError(t, err)
	products, err := s.Products().ListWithStock(context.Background(), seedCompany)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = openMemory(config.AppConfig{SeedFile: "x.csv", SeedCompanyID: "no-uuid"}, logger.Nop())
	assert.ErrorContains(t, err, "STORAGE_SEED_COMPANY")
}
