package receipt

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

const (
	pageWidth   = 80.0
	pageMargin  = 4.0
	lineHeight  = 4.5
	baseHeight  = 92.0
	contentWide = pageWidth - 2*pageMargin
)

// Колонки таблицы позиций в мм.
var pdfColumns = [4]float64{28, 10, 17, 17}

// RenderPDF печатает чек в PDF шириной 80 мм; высота страницы растёт с числом позиций.
func RenderPDF(w io.Writer, order domain.Order, profile Profile, loc *time.Location) error {
	itemLines := 0
	for _, item := range order.Items {
		itemLines += len(wrap(domain.DisplayName(item.Name), 16))
	}
	height := baseHeight + float64(len(profile.Address))*lineHeight + float64(itemLines)*lineHeight

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: height},
	})
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle(fmt.Sprintf("Receipt %s", order.ID), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, line := range profile.headerLines() {
		if i == 0 {
			pdf.SetFont("Courier", "B", 12)
		} else {
			pdf.SetFont("Courier", "", 8)
		}
		pdf.CellFormat(contentWide, lineHeight+0.5, tr(line), "", 1, "C", false, 0, "")
	}
	rule(pdf)

	pdf.SetFont("Courier", "", 8)
	for _, line := range []string{
		"Date: " + domain.FormatDateTime(order.CreatedAt, loc),
		"Order: " + order.ID,
		"Customer: " + domain.DisplayName(order.CustomerName),
	} {
		pdf.CellFormat(contentWide, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	rule(pdf)

	pdf.SetFont("Courier", "B", 8)
	pdfRow(pdf, "Item", "Qty", "Price", "Total")
	rule(pdf)

	pdf.SetFont("Courier", "", 8)
	for _, item := range order.Items {
		chunks := wrap(tr(domain.DisplayName(item.Name)), 16)
		pdfRow(pdf,
			chunks[0],
			FormatQty(item.Qty),
			domain.FormatMoney(item.Price, domain.RupeeASCII),
			domain.FormatMoney(item.Amount(), domain.RupeeASCII),
		)
		for _, rest := range chunks[1:] {
			pdf.CellFormat(contentWide, lineHeight, rest, "", 1, "L", false, 0, "")
		}
	}
	rule(pdf)

	pdf.SetFont("Courier", "B", 10)
	pdf.CellFormat(contentWide/2, lineHeight+1, "Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentWide/2, lineHeight+1, domain.FormatMoney(order.Total(), domain.RupeeASCII), "", 1, "R", false, 0, "")
	rule(pdf)

	if profile.Footer != "" {
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(contentWide, lineHeight, tr(profile.Footer), "", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt pdf: %w", err)
	}
	return nil
}

func pdfRow(pdf *gofpdf.Fpdf, name, qty, price, total string) {
	pdf.CellFormat(pdfColumns[0], lineHeight, name, "", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[1], lineHeight, qty, "", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[2], lineHeight, price, "", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[3], lineHeight, total, "", 1, "R", false, 0, "")
}

func rule(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1
	pdf.SetDashPattern([]float64{0.8, 0.8}, 0)
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetY(y + 1)
}
