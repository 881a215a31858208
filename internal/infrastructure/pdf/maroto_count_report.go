// Package pdf genera el reporte imprimible de un conteo físico de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Bodega        │  N° Conteo + Estado        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Periodo / Productos / Diferencias                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Sistema | Físico | Merma | Dif | Tipo│
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del conteo + firmas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.CountReportRenderer = (*MarotoCountReport)(nil)

// MarotoCountReport implementa inventory.CountReportRenderer usando Maroto v2.
type MarotoCountReport struct {
	author string
}

// NewMarotoCountReport construye el generador. author aparece en los metadatos del PDF.
func NewMarotoCountReport(author string) *MarotoCountReport {
	return &MarotoCountReport{author: author}
}

// RenderCountReport genera el PDF y devuelve sus bytes.
func (g *MarotoCountReport) RenderCountReport(ctx context.Context, report *inventory.CountReport) ([]byte, error) {
	if report == nil || report.Count == nil {
		return nil, fmt.Errorf("pdf: conteo vacío")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := report.Count

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Conteo físico de inventario", true).
		WithAuthor(nonEmpty(g.author, "conteo-inventario"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(count, report.WarehouseName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(count))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(count.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(count.Items))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(count))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(count *entity.InventoryCount, warehouseName string) core.Row {
	status := "PENDIENTE DE CIERRE"
	if !count.IsPending() {
		status = "CERRADO"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("CONTEO FÍSICO DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Bodega: "+nonEmpty(warehouseName, "Todas las bodegas"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(count.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+count.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func summaryRow(count *entity.InventoryCount) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RESUMEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Periodo: %s   |   Productos contados: %d   |   Con diferencia: %d",
				nonEmpty(count.DateRange, "—"), count.TotalProducts, count.TotalVariances,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Sistema", 1, align.Right),
		h("Físico", 1, align.Right),
		h("Merma", 1, align.Right),
		h("Diferencia", 2, align.Right),
		h("Tipo", 2, align.Center),
	)
}

func tableItemRows(items []entity.InventoryItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		num := func(d decimal.Decimal) core.Component {
			return text.New(formatQuantity(d), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(num(it.SystemStock)),
			col.New(1).Add(num(it.PhysicalCount)),
			col.New(1).Add(num(it.Shrinkage)),
			col.New(2).Add(text.New(formatQuantity(it.Variance), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Color: varianceColor(it.VarianceType),
			})),
			col.New(2).Add(text.New(strings.ToUpper(string(it.VarianceType)), props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1, Color: varianceColor(it.VarianceType),
			})),
		))
		if it.ShrinkageNotes != "" {
			result = append(result, row.New(5).Add(
				col.New(2),
				col.New(10).Add(text.New("Merma: "+it.ShrinkageNotes, props.Text{
					Size: 7, Style: fontstyle.Italic, Color: colorGray, Left: 1,
				})),
			))
		}
	}
	return result
}

func totalsRow(items []entity.InventoryItem) core.Row {
	var faltante, sobrante decimal.Decimal
	for _, it := range items {
		switch it.VarianceType {
		case entity.VarianceFaltante:
			faltante = faltante.Add(it.Variance)
		case entity.VarianceSobrante:
			sobrante = sobrante.Add(it.Variance)
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(d decimal.Decimal, c *props.Color) core.Component {
		return text.New(formatQuantity(d), props.Text{Size: 9, Align: align.Right, Right: 1, Color: c})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(label("Faltantes:"), label("Sobrantes:")),
		col.New(3).Add(value(faltante, colorRed), value(sobrante, colorGreen)),
	)
}

func footerRow(count *entity.InventoryCount) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(count.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Conteo "+count.ID, props.Text{Size: 7, Top: 2, Left: 3, Color: colorGray}),
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{Size: 7, Top: 7, Left: 3, Color: colorGray}),
			text.New("Contó: ______________________      Revisó: ______________________", props.Text{
				Size: 9, Top: 26, Left: 3,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return "N° " + strings.ToUpper(id[:8])
	}
	return "N° " + strings.ToUpper(id)
}

func varianceColor(t entity.VarianceType) *props.Color {
	switch t {
	case entity.VarianceFaltante:
		return colorRed
	case entity.VarianceSobrante:
		return colorGreen
	default:
		return colorGray
	}
}

// formatQuantity formato es-CO: puntos de miles, coma decimal, sin ceros sobrantes.
// Ej: 1234.5 → "1.234,5", -20 → "-20"
func formatQuantity(d decimal.Decimal) string {
	s := d.Abs().String()
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+2)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
