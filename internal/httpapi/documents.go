package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/export"
	"github.com/vladislavdragonenkov/laundry-pos/internal/receipt"
)

const (
	receiptFormatText = "text"
	receiptFormatPDF  = "pdf"
)

func (s *Server) orderReceipt(c echo.Context) error {
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = receiptFormatText
	}
	if format != receiptFormatText && format != receiptFormatPDF {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported receipt format %q", format))
	}

	order, err := s.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if format == receiptFormatText {
		return c.String(http.StatusOK, receipt.RenderText(order, s.cfg.Receipt, s.cfg.Location))
	}

	var buf bytes.Buffer
	if err := receipt.RenderPDF(&buf, order, s.cfg.Receipt, s.cfg.Location); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "receipt_"+order.ID+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) exportXLSX(c echo.Context) error {
	return s.exportOrders(c, export.FormatXLSX, export.WriteXLSX)
}

func (s *Server) exportPDF(c echo.Context) error {
	return s.exportOrders(c, export.FormatPDF, export.WritePDF)
}

// exportOrders отдаёт выгрузку вложением. Пустой список даёт файл с одной строкой заголовков.
func (s *Server) exportOrders(c echo.Context, format string, write func(io.Writer, []domain.Order, *time.Location) error) error {
	listing, err := s.orders.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := write(&buf, listing.Orders, s.cfg.Location); err != nil {
		return fmt.Errorf("write %s export: %w", format, err)
	}
	s.orderMetrics.RecordExport(format)

	name := export.FileName(format, s.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType(format), buf.Bytes())
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (s *Server) suggestItems(c echo.Context) error {
	return c.JSON(http.StatusOK, suggestionsResponse{Suggestions: domain.Suggest(domain.ItemSuggestions, c.QueryParam("q"))})
}

func (s *Server) suggestCustomers(c echo.Context) error {
	return c.JSON(http.StatusOK, suggestionsResponse{Suggestions: domain.Suggest(domain.CustomerSuggestions, c.QueryParam("q"))})
}
