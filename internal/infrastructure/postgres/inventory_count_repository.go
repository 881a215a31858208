package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.InventoryCountRepository = (*InventoryCountRepo)(nil)

// InventoryCountRepo persiste conteos en inventory_counts e inventory_count_items.
type InventoryCountRepo struct {
	q Querier
}

// NewInventoryCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryCountRepository(q Querier) *InventoryCountRepo {
	return &InventoryCountRepo{q: q}
}

const countColumns = `id, company_id, date_range, scope, status, total_products, total_variances,
	created_by, created_at, closed_by, closed_at, close_mode, close_reason`

// Create inserta el encabezado y envía los ítems en un solo batch.
func (r *InventoryCountRepo) Create(ctx context.Context, count *entity.InventoryCount) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_counts (id, company_id, date_range, scope, status, total_products, total_variances, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		count.ID, count.CompanyID, count.DateRange, count.Scope.String(), count.Status,
		count.TotalProducts, count.TotalVariances, nullable(count.CreatedBy), count.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert inventory count: %w", err)
	}

	batch := &pgx.Batch{}
	for i, it := range count.Items {
		batch.Queue(`
			INSERT INTO inventory_count_items (count_id, line, product_id, sku, product_name, system_stock, physical_count, shrinkage, shrinkage_notes, variance, variance_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			count.ID, i+1, it.ProductID, it.SKU, it.ProductName, it.SystemStock, it.PhysicalCount,
			it.Shrinkage, it.ShrinkageNotes, it.Variance, string(it.VarianceType),
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range count.Items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert inventory count item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el conteo con sus ítems. Devuelve (nil, nil) si no existe.
func (r *InventoryCountRepo) GetByID(ctx context.Context, id string) (*entity.InventoryCount, error) {
	return r.get(ctx, `SELECT `+countColumns+` FROM inventory_counts WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea el encabezado hasta el fin de la tx.
func (r *InventoryCountRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryCount, error) {
	return r.get(ctx, `SELECT `+countColumns+` FROM inventory_counts WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryCountRepo) get(ctx context.Context, query, id string) (*entity.InventoryCount, error) {
	c, err := scanCount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory count: %w", err)
	}
	if c.Items, err = r.items(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *InventoryCountRepo) items(ctx context.Context, countID string) ([]entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, sku, product_name, system_stock, physical_count, shrinkage, shrinkage_notes, variance, variance_type
		FROM inventory_count_items WHERE count_id = $1 ORDER BY line`, countID)
	if err != nil {
		return nil, fmt.Errorf("list inventory count items: %w", err)
	}
	defer rows.Close()
	var list []entity.InventoryItem
	for rows.Next() {
		var it entity.InventoryItem
		var varianceType string
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.SystemStock, &it.PhysicalCount,
			&it.Shrinkage, &it.ShrinkageNotes, &it.Variance, &varianceType); err != nil {
			return nil, fmt.Errorf("scan inventory count item: %w", err)
		}
		it.VarianceType = entity.VarianceType(varianceType)
		list = append(list, it)
	}
	return list, rows.Err()
}

// MarkCompleted cierra el conteo solo si sigue pending; así un cierre repetido no pasa
// aunque el llamador no haya bloqueado la fila.
func (r *InventoryCountRepo) MarkCompleted(ctx context.Context, id string, closure repository.CountClosure) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_counts
		SET status = $2, closed_by = $3, closed_at = $4, close_mode = $5, close_reason = $6
		WHERE id = $1 AND status = $7`,
		id, entity.CountStatusCompleted, nullable(closure.ClosedBy), closure.ClosedAt,
		closure.Mode, nullable(closure.Reason), entity.CountStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark inventory count completed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCountAlreadyClosed
	}
	return nil
}

// ListByCompany lista encabezados (sin ítems), más recientes primero.
func (r *InventoryCountRepo) ListByCompany(ctx context.Context, companyID string, filter repository.CountFilter) ([]*entity.InventoryCount, error) {
	query := `SELECT ` + countColumns + ` FROM inventory_counts WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, filter.Limit)
		pos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory counts: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryCount
	for rows.Next() {
		c, err := scanCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory count: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCount(row pgx.Row) (*entity.InventoryCount, error) {
	var (
		c                              entity.InventoryCount
		scope                          string
		createdBy, closedBy, closeMode *string
		closeReason                    *string
	)
	if err := row.Scan(&c.ID, &c.CompanyID, &c.DateRange, &scope, &c.Status, &c.TotalProducts, &c.TotalVariances,
		&createdBy, &c.CreatedAt, &closedBy, &c.ClosedAt, &closeMode, &closeReason); err != nil {
		return nil, err
	}
	c.Scope = entity.Scope(scope)
	c.CreatedBy = deref(createdBy)
	c.ClosedBy = deref(closedBy)
	c.CloseMode = deref(closeMode)
	c.CloseReason = deref(closeReason)
	return &c, nil
}
