// Package gateway: единая точка доступа к коллекции заказов.
//
// Каждая операция сначала гарантирует сессию с хранилищем. Сбой транспорта или
// хранилища логируется, вызывающему возвращается пустой результат и ошибка,
// оборачивающая domain.ErrStoreUnavailable.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
)

const (
	opListOrders  = "list_orders"
	opInsertOrder = "insert_order"
	opDeleteOrder = "delete_order"
	opGetOrder    = "get_order"
	opPing        = "ping"
)

// Gateway выполняет CRUD-операции над заказами через domain.OrderStore.
type Gateway struct {
	store   domain.OrderStore
	logger  *log.Entry
	metrics *metrics.GatewayMetrics

	mu    sync.Mutex
	state atomic.Int32
}

// Option настраивает Gateway.
type Option func(*Gateway)

// WithLogger задаёт логгер шлюза.
func WithLogger(logger *log.Entry) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics включает prometheus-метрики шлюза.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// New создаёт шлюз без сессии. Сессия устанавливается при первой операции.
func New(store domain.OrderStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		logger: log.WithField("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.setState(StateUnauthenticated)
	return g
}

// Open создаёт шлюз и сразу устанавливает сессию.
func Open(ctx context.Context, store domain.OrderStore, opts ...Option) (*Gateway, error) {
	g := New(store, opts...)
	if err := g.ensureSession(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// ListOrders возвращает все заказы в порядке хранилища.
// При сбое возвращается пустой (не nil) список и ошибка.
func (g *Gateway) ListOrders(ctx context.Context) ([]domain.Order, error) {
	started := time.Now()

	if err := g.ensureSession(ctx); err != nil {
		return []domain.Order{}, g.fail(opListOrders, started, err, nil)
	}

	orders, err := g.store.FindAll(ctx)
	if err != nil {
		return []domain.Order{}, g.fail(opListOrders, started, err, nil)
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	g.metrics.RecordOperation(opListOrders, metrics.ResultOK, time.Since(started))
	return orders, nil
}

// InsertOrder записывает заказ без проверки дубликатов номера.
func (g *Gateway) InsertOrder(ctx context.Context, order domain.Order) error {
	started := time.Now()
	fields := log.Fields{"order_id": order.ID}

	if err := g.ensureSession(ctx); err != nil {
		return g.fail(opInsertOrder, started, err, fields)
	}
	if err := g.store.InsertOne(ctx, order); err != nil {
		return g.fail(opInsertOrder, started, err, fields)
	}

	g.metrics.RecordOperation(opInsertOrder, metrics.ResultOK, time.Since(started))
	return nil
}

// DeleteOrder удаляет не более одного заказа и сообщает, нашёлся ли он.
// Отсутствие заказа ошибкой не считается.
func (g *Gateway) DeleteOrder(ctx context.Context, id string) (bool, error) {
	started := time.Now()
	fields := log.Fields{"order_id": id}

	if err := g.ensureSession(ctx); err != nil {
		return false, g.fail(opDeleteOrder, started, err, fields)
	}

	deleted, err := g.store.DeleteOne(ctx, id)
	if err != nil {
		return false, g.fail(opDeleteOrder, started, err, fields)
	}

	result := metrics.ResultOK
	if !deleted {
		result = metrics.ResultNotFound
		g.logger.WithFields(fields).Debug("delete matched no order")
	}
	g.metrics.RecordOperation(opDeleteOrder, result, time.Since(started))
	return deleted, nil
}

// GetOrder возвращает первый заказ с указанным номером.
// Если заказа нет: domain.ErrOrderNotFound; при сбое: нулевой заказ и ошибка.
func (g *Gateway) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	started := time.Now()
	fields := log.Fields{"order_id": id}

	if err := g.ensureSession(ctx); err != nil {
		return domain.Order{}, g.fail(opGetOrder, started, err, fields)
	}

	order, err := g.store.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			g.metrics.RecordOperation(opGetOrder, metrics.ResultNotFound, time.Since(started))
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, g.fail(opGetOrder, started, err, fields)
	}

	g.metrics.RecordOperation(opGetOrder, metrics.ResultOK, time.Since(started))
	return order, nil
}

// Ping проверяет сессию и доступность хранилища. Используется health-пробами,
// поэтому сбой пишется в лог на уровне Debug и не попадает в метрики операций.
func (g *Gateway) Ping(ctx context.Context) error {
	err := g.handshake(ctx, log.DebugLevel)
	if err == nil {
		err = g.store.Ping(ctx)
	}
	if err != nil {
		g.logger.WithField("operation", opPing).WithError(err).Debug("order store ping failed")
		return fmt.Errorf("%s: %w: %w", opPing, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close закрывает хранилище и сбрасывает сессию.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.setState(StateUnauthenticated)
	if err := g.store.Close(ctx); err != nil {
		return fmt.Errorf("close order store: %w", err)
	}
	return nil
}

func (g *Gateway) fail(op string, started time.Time, err error, fields log.Fields) error {
	g.metrics.RecordOperation(op, metrics.ResultFailed, time.Since(started))
	g.logger.WithFields(fields).WithField("operation", op).WithError(err).Error("gateway operation failed")
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
