// Package catalogcsv lee la exportación CSV del catálogo del sistema anterior
// (ISO-8859-1, separador ';'): sku;nombre;bodega;cantidad. Bodega vacía = stock sin
// desglose por bodega (campo heredado del producto).
package catalogcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	"github.com/jhoicas/conteo-inventario/internal/domain/inventory"
)

// Row una línea del CSV.
type Row struct {
	SKU         string
	Name        string
	WarehouseID string
	Quantity    decimal.Decimal
}

// ReadFile abre el CSV en ISO-8859-1 y devuelve el catálogo agrupado por SKU.
func ReadFile(path string, companyID uuid.UUID) ([]entity.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()

	rows, err := ParseRows(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	return Group(companyID, rows), nil
}

// ParseRows lee el CSV ya decodificado a UTF-8. La primera línea puede ser encabezado.
func ParseRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var out []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		sku := strings.TrimSpace(rec[0])
		if sku == "" {
			return nil, fmt.Errorf("línea %d: sku vacío", line)
		}
		qty, ok := inventory.ParseCount(rec[3])
		if !ok {
			return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[3])
		}
		out = append(out, Row{
			SKU:         sku,
			Name:        strings.TrimSpace(rec[1]),
			WarehouseID: strings.TrimSpace(rec[2]),
			Quantity:    qty,
		})
	}
}

// Group agrupa por SKU, ordenado por SKU y con Stocks ordenado por bodega. El ID del
// producto se deriva de empresa y SKU, así que recargar el mismo CSV no duplica productos.
func Group(companyID uuid.UUID, rows []Row) []entity.Product {
	bySKU := make(map[string]*entity.Product)
	stock := make(map[string]map[string]decimal.Decimal)
	for _, r := range rows {
		p, ok := bySKU[r.SKU]
		if !ok {
			p = &entity.Product{
				ID:        uuid.NewSHA1(companyID, []byte(r.SKU)).String(),
				CompanyID: companyID.String(),
				SKU:       r.SKU,
				Name:      r.Name,
			}
			bySKU[r.SKU] = p
			stock[r.SKU] = make(map[string]decimal.Decimal)
		}
		if r.WarehouseID == "" {
			q := r.Quantity
			if p.Stock.Valid {
				q = q.Add(p.Stock.Decimal)
			}
			p.Stock = decimal.NewNullDecimal(q)
			continue
		}
		stock[r.SKU][r.WarehouseID] = stock[r.SKU][r.WarehouseID].Add(r.Quantity)
	}

	out := make([]entity.Product, 0, len(bySKU))
	for sku, p := range bySKU {
		for wh, q := range stock[sku] {
			p.Stocks = append(p.Stocks, entity.WarehouseStock{
				ProductID: p.ID, WarehouseID: wh, Quantity: decimal.NewNullDecimal(q),
			})
		}
		sort.Slice(p.Stocks, func(i, j int) bool { return p.Stocks[i].WarehouseID < p.Stocks[j].WarehouseID })
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// Warehouses devuelve las bodegas referenciadas por el catálogo, ordenadas por ID.
func Warehouses(products []entity.Product) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		for _, s := range p.Stocks {
			seen[s.WarehouseID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for wh := range seen {
		out = append(out, wh)
	}
	sort.Strings(out)
	return out
}
