package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// Title: заголовок PDF-выгрузки.
const Title = "Orders Export"

const (
	pdfMarginX    = 14.0
	pdfMarginTop  = 15.0
	pdfMarginBot  = 15.0
	pdfRowHeight  = 7.0
	pdfPageHeight = 297.0
)

var pdfColumnWidths = []float64{34, 50, 16, 32, 50}

// WritePDF пишет выгрузку на A4: заголовок и таблицу; строка заголовков повторяется
// на каждой странице.
func WritePDF(w io.Writer, orders []domain.Order, loc *time.Location) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginX, pdfMarginTop, pdfMarginX)
	pdf.SetAutoPageBreak(false, pdfMarginBot)
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(pdfMarginX, pdfMarginTop, Title)
	pdf.SetY(pdfMarginTop + 5)
	writeHeaderRow(pdf)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range Rows(orders, loc, domain.RupeeASCII) {
		if pdf.GetY()+pdfRowHeight > pdfPageHeight-pdfMarginBot {
			pdf.AddPage()
			writeHeaderRow(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}

		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		cells := []string{row.OrderNumber, tr(row.Customer), strconv.Itoa(row.Items), row.Total, row.Date}
		for c, value := range cells {
			align := "L"
			if c == 2 || c == 3 {
				align = "R"
			}
			pdf.CellFormat(pdfColumnWidths[c], pdfRowHeight, value, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(pdfRowHeight)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeHeaderRow(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	for i, header := range Columns {
		pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight+1, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(pdfRowHeight + 1)
	pdf.SetTextColor(0, 0, 0)
}
