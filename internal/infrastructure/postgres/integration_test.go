package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/conteo-inventario/pkg/config"
)

// Requiere TEST_DATABASE_URL apuntando a una base con la migración aplicada.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	if err != nil {
		t.Skipf("PostgreSQL no disponible: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestInventoryCountRepo_CierreUnaVez(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := postgres.NewInventoryCountRepository(pool)

	count := &entity.InventoryCount{
		ID:        uuid.New().String(),
		CompanyID: uuid.New().String(),
		Scope:     entity.ScopeGlobal,
		Status:    entity.CountStatusPending,
		Items: []entity.InventoryItem{{
			ProductID:     uuid.New().String(),
			SKU:           "A-1",
			ProductName:   "Arroz",
			SystemStock:   decimal.NewFromInt(20),
			PhysicalCount: decimal.NewFromInt(18),
			Shrinkage:     decimal.NewFromInt(1),
			Variance:      decimal.NewFromInt(-1),
			VarianceType:  entity.VarianceFaltante,
		}},
		TotalProducts:  1,
		TotalVariances: 1,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.Create(ctx, count))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM inventory_counts WHERE id = $1`, count.ID) })

	got, err := repo.GetByID(ctx, count.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.NewFromInt(-1).Equal(got.Items[0].Variance))
	assert.Equal(t, entity.VarianceFaltante, got.Items[0].VarianceType)

	closure := repository.CountClosure{ClosedAt: time.Now(), Mode: entity.CloseModeAck}
	require.NoError(t, repo.MarkCompleted(ctx, count.ID, closure))
	assert.ErrorIs(t, repo.MarkCompleted(ctx, count.ID, closure), domain.ErrCountAlreadyClosed)

	missing, err := repo.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
