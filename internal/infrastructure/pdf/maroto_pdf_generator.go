// Package pdf genera los documentos imprimibles de bodega con Maroto v2.
//
// Hoja de inventario (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Código de ubicación + área │ Código de barras      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: ID | Transportista | Tracking | RMA | Cajas | Etapa │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de entradas + fecha de generación + firmas   │
//	└─────────────────────────────────────────────────────────────┘
//
// Etiqueta (A6): código grande, código de barras y QR.
package pdf

import (
	"context"
	"fmt"
	"strconv"
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

	"github.com/jhoicas/Returns-api/internal/application/analytics"
	"github.com/jhoicas/Returns-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ analytics.DocumentGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa analytics.DocumentGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador. company aparece como autor del documento.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// LocationSheet genera la hoja de inventario de una ubicación y devuelve sus bytes.
func (g *MarotoPDFGenerator) LocationSheet(
	_ context.Context,
	loc *entity.Location,
	entries []*entity.Entry,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Inventario "+loc.Code, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(sheetHeaderRow(loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range tableEntryRows(entries) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range sheetFooterRows(len(entries), generatedAt) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar hoja de inventario: %w", err)
	}
	return doc.GetBytes(), nil
}

// LocationLabel genera la etiqueta de la ubicación.
func (g *MarotoPDFGenerator) LocationLabel(_ context.Context, loc *entity.Location) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A6).
		WithLeftMargin(6).WithRightMargin(6).
		WithTopMargin(6).WithBottomMargin(6).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Etiqueta "+loc.Code, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(
		row.New(20).Add(col.New(12).Add(
			text.New(loc.Code, props.Text{Style: fontstyle.Bold, Size: 26, Align: align.Center, Color: colorPrimary}),
		)),
		row.New(8).Add(col.New(12).Add(
			text.New(nonEmpty(loc.Area, "—")+"  ·  "+nonEmpty(loc.Description, ""), props.Text{
				Size: 9, Align: align.Center, Color: colorGray,
			}),
		)),
		row.New(22).Add(col.New(12).Add(
			code.NewBar(loc.Code, props.Barcode{Percent: 90, Center: true}),
		)),
		row.New(4),
		row.New(36).Add(col.New(12).Add(
			code.NewQr(loc.Code, props.Rect{Percent: 95, Center: true}),
		)),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// sheetHeaderRow: código y área (izq) y código de barras (der).
func sheetHeaderRow(loc *entity.Location) core.Row {
	status := "ACTIVA"
	if !loc.IsActive {
		status = "INACTIVA"
	}
	return row.New(20).Add(
		col.New(6).Add(
			text.New("HOJA DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(loc.Code, props.Text{
				Style: fontstyle.Bold, Size: 16, Top: 6,
			}),
			text.New(fmt.Sprintf("Área: %s   |   %s", nonEmpty(loc.Area, "—"), status), props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(6).Add(
			code.NewBar(loc.Code, props.Barcode{Percent: 80, Center: true}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de entradas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("ID", 1, align.Center),
		h("Transportista", 3, align.Left),
		h("Tracking", 3, align.Left),
		h("RMA", 2, align.Left),
		h("Cajas", 1, align.Center),
		h("Etapa", 2, align.Left),
	)
}

// tableEntryRows: una fila por entrada.
func tableEntryRows(entries []*entity.Entry) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		result = append(result, row.New(7).Add(
			cell(strconv.FormatInt(e.ID, 10), 1, align.Center),
			cell(e.CarrierName, 3, align.Left),
			cell(nonEmpty(e.TrackingNumber, "—"), 3, align.Left),
			cell(nonEmpty(e.ReturnNumber, "—"), 2, align.Left),
			cell(cartons(e), 1, align.Center),
			cell(e.Stage, 2, align.Left),
		))
	}
	return result
}

// sheetFooterRows: total, fecha y espacio para firmas del conteo físico.
func sheetFooterRows(total int, generatedAt time.Time) []core.Row {
	return []core.Row{
		row.New(8).Add(
			col.New(6).Add(text.New(fmt.Sprintf("Total de entradas: %d", total), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			})),
			col.New(6).Add(text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			})),
		),
		row.New(14),
		row.New(6).Add(
			col.New(5).Add(text.New("____________________________", props.Text{Size: 8, Align: align.Center})),
			col.New(2),
			col.New(5).Add(text.New("____________________________", props.Text{Size: 8, Align: align.Center})),
		),
		row.New(6).Add(
			col.New(5).Add(text.New("Contó", props.Text{Size: 8, Align: align.Center, Color: colorGray})),
			col.New(2),
			col.New(5).Add(text.New("Verificó", props.Text{Size: 8, Align: align.Center, Color: colorGray})),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// cartons "real/esperado" o lo que haya.
func cartons(e *entity.Entry) string {
	switch {
	case e.ActualCarton != nil && e.ExpectedCarton != nil:
		return fmt.Sprintf("%d/%d", *e.ActualCarton, *e.ExpectedCarton)
	case e.ActualCarton != nil:
		return strconv.Itoa(*e.ActualCarton)
	case e.ExpectedCarton != nil:
		return "0/" + strconv.Itoa(*e.ExpectedCarton)
	}
	return "—"
}
