// seed_catalog genera un script SQL para cargar el catálogo inicial de productos y su
// stock por bodega a partir de la exportación CSV del sistema anterior (ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog <company_id> [ruta/catalogo.csv]
// Formato: sku;nombre;bodega;cantidad. Bodega vacía = stock sin desglose (products.stock).
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/catalogcsv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_catalog <company_id> [catalogo.csv]")
		os.Exit(2)
	}
	companyID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "company_id inválido: %v\n", err)
		os.Exit(2)
	}
	csvPath := "catalogo.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}
	products, err := catalogcsv.ReadFile(csvPath, companyID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, products); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos\n", outPath, len(products))
}

func writeSQL(w io.Writer, products []entity.Product) error {
	b := &strings.Builder{}
	b.WriteString("-- Catálogo inicial de productos y stock por bodega\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	b.WriteString("-- 1. Productos\n")
	for _, p := range products {
		legacy := "NULL"
		if p.Stock.Valid {
			legacy = p.Stock.Decimal.String()
		}
		fmt.Fprintf(b, "INSERT INTO products (id, company_id, sku, name, stock, created_at, updated_at)\n")
		fmt.Fprintf(b, "VALUES ('%s', '%s', '%s', '%s', %s, now(), now())\n",
			p.ID, p.CompanyID, escapeSQL(p.SKU), escapeSQL(p.Name), legacy)
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, stock = EXCLUDED.stock, updated_at = now();\n")
	}

	b.WriteString("\n-- 2. Stock por bodega\n")
	for _, p := range products {
		for _, s := range p.Stocks {
			fmt.Fprintf(b, "INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)\n")
			fmt.Fprintf(b, "VALUES ('%s', '%s', %s, now())\n", p.ID, escapeSQL(s.WarehouseID), s.Qty().String())
			b.WriteString("ON CONFLICT (product_id, warehouse_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now();\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
