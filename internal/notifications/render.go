package notifications

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/xuri/excelize/v2"
)

const quoteSheet = "Quote"

// RenderQuotePDF lays a stored quote out as a one-document PDF.
func RenderQuotePDF(q *models.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()
	m := maroto.New(cfg)

	addPDFHeader(m, q)
	addPDFItems(m, q)
	addPDFTotals(m, q)
	if q.Terms != "" || q.Notes != "" {
		m.AddRow(5, line.NewCol(12))
		m.AddRow(12,
			col.New(12).Add(
				text.New(q.Notes, props.Text{Size: 8, Align: align.Left}),
				text.New(q.Terms, props.Text{Size: 8, Top: 5, Align: align.Left}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, q *models.Quote) {
	m.AddRow(24,
		col.New(6).Add(
			text.New("TurboAir", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
			text.New(q.SalesRep, props.Text{Size: 9, Top: 8, Align: align.Left}),
			text.New(q.Region, props.Text{Size: 9, Top: 13, Align: align.Left}),
		),
		col.New(6).Add(
			text.New("COTIZACIÓN", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			text.New("# "+q.QuoteNumber, props.Text{Size: 10, Top: 7, Align: align.Right}),
			text.New("Fecha: "+q.CreatedAt.Format("2006-01-02"), props.Text{Size: 9, Top: 12, Align: align.Right}),
			text.New("Vigencia: "+q.ExpiresAt.Format("2006-01-02"), props.Text{Size: 9, Top: 17, Align: align.Right}),
		),
	)
	m.AddRow(10,
		col.New(12).Add(
			text.New("Cliente: "+q.ClientName, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addPDFItems(m core.Maroto, q *models.Quote) {
	header := props.Text{Size: 10, Style: fontstyle.Bold}
	m.AddRow(8,
		col.New(2).Add(text.New("SKU", withAlign(header, align.Left))),
		col.New(5).Add(text.New("Producto", withAlign(header, align.Left))),
		col.New(1).Add(text.New("Cant.", withAlign(header, align.Center))),
		col.New(2).Add(text.New("Precio", withAlign(header, align.Right))),
		col.New(2).Add(text.New("Total", withAlign(header, align.Right))),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	for _, item := range q.Items {
		m.AddRow(8,
			col.New(2).Add(text.New(item.SKU, withAlign(cell, align.Left))),
			col.New(5).Add(text.New(item.Name, withAlign(cell, align.Left))),
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.Quantity), withAlign(cell, align.Center))),
			col.New(2).Add(text.New(FormatCurrency(item.UnitPrice), withAlign(cell, align.Right))),
			col.New(2).Add(text.New(FormatCurrency(item.LineTotal), withAlign(cell, align.Right))),
		)
	}
	m.AddRow(5, line.NewCol(12))
}

func addPDFTotals(m core.Maroto, q *models.Quote) {
	rows := [][2]string{{"Subtotal", FormatCurrency(q.Subtotal)}}
	if q.DiscountAmount.IsPositive() {
		rows = append(rows, [2]string{fmt.Sprintf("Descuento (%s%%)", q.DiscountPct.String()), "-" + FormatCurrency(q.DiscountAmount)})
	}
	rows = append(rows,
		[2]string{fmt.Sprintf("IVA (%s%%)", q.TaxRate.Mul(decimal.NewFromInt(100)).String()), FormatCurrency(q.Tax)},
		[2]string{"Envío", FormatCurrency(q.Shipping)},
		[2]string{"Total " + q.Currency, FormatCurrency(q.Total)},
	)
	for i, r := range rows {
		style := props.Text{Size: 10, Align: align.Right}
		if i == len(rows)-1 {
			style.Style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(8),
			col.New(2).Add(text.New(r[0], style)),
			col.New(2).Add(text.New(r[1], style)),
		)
	}
}

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}

// RenderQuoteXLSX writes the quote lines and totals into a single sheet.
func RenderQuoteXLSX(q *models.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", quoteSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	cells := map[string]any{
		"A1": "Cotización", "B1": q.QuoteNumber,
		"A2": "Cliente", "B2": q.ClientName,
		"A3": "Fecha", "B3": q.CreatedAt.Format("2006-01-02"),
		"A4": "Moneda", "B4": q.Currency,
	}
	for cell, v := range cells {
		if err := f.SetCellValue(quoteSheet, cell, v); err != nil {
			return nil, err
		}
	}
	header := []any{"SKU", "Producto", "Cantidad", "Precio", "Descuento %", "Total"}
	if err := f.SetSheetRow(quoteSheet, "A6", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(quoteSheet, "A6", "F6", bold); err != nil {
		return nil, err
	}

	row := 7
	for _, item := range q.Items {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{item.SKU, item.Name, item.Quantity, item.UnitPrice.InexactFloat64(), item.DiscountPct.InexactFloat64(), item.LineTotal.InexactFloat64()}
		if err := f.SetSheetRow(quoteSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}
	row++
	for _, total := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", q.Subtotal},
		{"Descuento", q.DiscountAmount},
		{"IVA", q.Tax},
		{"Envío", q.Shipping},
		{"Total", q.Total},
	} {
		labelCell, _ := excelize.CoordinatesToCellName(5, row)
		valueCell, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetCellValue(quoteSheet, labelCell, total.label); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(quoteSheet, valueCell, total.value.InexactFloat64()); err != nil {
			return nil, err
		}
		row++
	}
	last, _ := excelize.CoordinatesToCellName(6, row)
	if err := f.SetCellStyle(quoteSheet, "D7", last, money); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(quoteSheet, "B", "B", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
