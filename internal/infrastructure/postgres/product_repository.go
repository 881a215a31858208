package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID con sus registros por bodega.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, company_id, sku, name, stock, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT product_id, warehouse_id, quantity, updated_at FROM stock WHERE product_id = $1 ORDER BY warehouse_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get product stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.WarehouseStock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		p.Stocks = append(p.Stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get product stock: %w", err)
	}
	return &p, nil
}

// ListWithStock lista el catálogo de la empresa en una sola consulta (LEFT JOIN stock).
// Un producto sin filas en stock queda con Stocks vacío.
func (r *ProductRepo) ListWithStock(ctx context.Context, companyID string) ([]*entity.Product, error) {
	query := `
		SELECT p.id, p.company_id, p.sku, p.name, p.stock, p.created_at, p.updated_at,
		       s.warehouse_id, s.quantity, s.updated_at
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.company_id = $1
		ORDER BY p.sku, p.id, s.warehouse_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list products with stock: %w", err)
	}
	defer rows.Close()

	var (
		list []*entity.Product
		cur  *entity.Product
	)
	for rows.Next() {
		var (
			p           entity.Product
			warehouseID *string
			qty         decimal.NullDecimal
			stockAt     *time.Time
		)
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
			&warehouseID, &qty, &stockAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if cur == nil || cur.ID != p.ID {
			cur = &p
			list = append(list, cur)
		}
		if warehouseID == nil {
			continue
		}
		s := entity.WarehouseStock{ProductID: p.ID, WarehouseID: *warehouseID, Quantity: qty}
		if stockAt != nil {
			s.UpdatedAt = *stockAt
		}
		cur.Stocks = append(cur.Stocks, s)
	}
	return list, rows.Err()
}

// UpdateLegacyStock sobrescribe el stock escalar de un producto sin bodegas.
func (r *ProductRepo) UpdateLegacyStock(ctx context.Context, productID string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("update legacy stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
