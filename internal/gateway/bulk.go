package gateway

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// BulkDeleteReport: итог массового удаления.
type BulkDeleteReport struct {
	// Deleted: номера, для которых удаление прошло (в том числе отсутствовавшие).
	Deleted []string
	// Remaining: номер, на котором произошёл сбой, и все непройденные после него.
	Remaining []string
	// Err: причина остановки; nil, если пройдены все номера.
	Err error
}

// Complete сообщает, что все номера пройдены.
func (r BulkDeleteReport) Complete() bool {
	return r.Err == nil && len(r.Remaining) == 0
}

// DeleteOrders удаляет заказы по одному в заданном порядке и останавливается
// на первом сбое. Уже удалённые заказы не восстанавливаются.
func (g *Gateway) DeleteOrders(ctx context.Context, ids []string) BulkDeleteReport {
	report := BulkDeleteReport{
		Deleted:   make([]string, 0, len(ids)),
		Remaining: []string{},
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Remaining = append(report.Remaining, ids[i:]...)
			report.Err = fmt.Errorf("bulk delete interrupted: %w", err)
			break
		}
		if _, err := g.DeleteOrder(ctx, id); err != nil {
			report.Remaining = append(report.Remaining, ids[i:]...)
			report.Err = err
			break
		}
		report.Deleted = append(report.Deleted, id)
	}

	entry := g.logger.WithFields(log.Fields{
		"deleted":   len(report.Deleted),
		"remaining": len(report.Remaining),
	})
	if report.Err != nil {
		entry.WithError(report.Err).Warn("bulk delete stopped")
	} else {
		entry.Info("bulk delete finished")
	}
	return report
}
