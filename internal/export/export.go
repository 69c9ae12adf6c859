// Package export выгружает список заказов в XLSX и PDF.
package export

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// Форматы выгрузки.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Columns: заголовки колонок выгрузки.
var Columns = []string{"Order Number", "Customer", "Items", "Total", "Date"}

// Row: строка выгрузки.
type Row struct {
	OrderNumber string
	Customer    string
	Items       int
	Total       string
	Date        string
}

// Rows готовит строки выгрузки; symbol: обозначение валюты в колонке Total.
func Rows(orders []domain.Order, loc *time.Location, symbol string) []Row {
	rows := make([]Row, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, Row{
			OrderNumber: order.ID,
			Customer:    domain.DisplayName(order.CustomerName),
			Items:       len(order.Items),
			Total:       domain.FormatMoney(order.Total(), symbol),
			Date:        domain.FormatDateTime(order.CreatedAt, loc),
		})
	}
	return rows
}

// FileName возвращает имя файла выгрузки: orders_export_2025-01-05.xlsx.
// Дата берётся в UTC.
func FileName(ext string, now time.Time) string {
	return fmt.Sprintf("orders_export_%s.%s", now.UTC().Format("2006-01-02"), ext)
}

// ContentType возвращает MIME-тип формата выгрузки.
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
