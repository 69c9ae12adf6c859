// Package jobs содержит фоновые задачи сервиса.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/export"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
	"github.com/vladislavdragonenkov/laundry-pos/internal/service/pos"
)

// ArchivePrefix: каталог архивов выгрузок в бакете.
const ArchivePrefix = "exports"

// OrderLister отдаёт текущий список заказов.
type OrderLister interface {
	ListOrders(ctx context.Context) (pos.Listing, error)
}

// Uploader сохраняет файл в архив.
type Uploader interface {
	Put(ctx context.Context, name, contentType string, data []byte) error
}

// ExportArchiver выгружает заказы в XLSX и кладёт файл в архив.
type ExportArchiver struct {
	orders   OrderLister
	uploader Uploader
	location *time.Location
	metrics  *metrics.OrderMetrics
	logger   *log.Entry
	now      func() time.Time
}

// NewExportArchiver создаёт архиватор; loc: зона для колонки Date.
func NewExportArchiver(orders OrderLister, uploader Uploader, loc *time.Location, m *metrics.OrderMetrics) *ExportArchiver {
	return &ExportArchiver{
		orders:   orders,
		uploader: uploader,
		location: loc,
		metrics:  m,
		logger:   log.WithField("component", "export-archiver"),
		now:      time.Now,
	}
}

// RunOnce делает одну выгрузку и возвращает имя объекта в архиве.
// При недоступном хранилище заказов архив не пишется: пустая выгрузка затёрла бы дневной файл.
func (a *ExportArchiver) RunOnce(ctx context.Context) (string, error) {
	listing, err := a.orders.ListOrders(ctx)
	if err != nil {
		return "", fmt.Errorf("list orders for archive: %w", err)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, listing.Orders, a.location); err != nil {
		return "", err
	}

	name := path.Join(ArchivePrefix, export.FileName(export.FormatXLSX, a.now()))
	if err := a.uploader.Put(ctx, name, export.ContentType(export.FormatXLSX), buf.Bytes()); err != nil {
		return "", err
	}

	a.metrics.RecordExport(export.FormatXLSX)
	a.logger.WithFields(log.Fields{
		"object": name,
		"orders": listing.Count,
	}).Info("orders export archived")
	return name, nil
}
