// Package pos реализует операции кассы: нумерацию, создание, просмотр и удаление заказов.
package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
)

// OrderGateway: операции шлюза, нужные сервису. Реализуется *gateway.Gateway.
type OrderGateway interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	InsertOrder(ctx context.Context, order domain.Order) error
	DeleteOrder(ctx context.Context, id string) (bool, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	DeleteOrders(ctx context.Context, ids []string) gateway.BulkDeleteReport
}

// Listing: список заказов со сводкой.
type Listing struct {
	Orders     []domain.Order `json:"orders"`
	Count      int            `json:"count"`
	GrandTotal float64        `json:"grandTotal"`
}

// NewListing считает сводку по заказам.
func NewListing(orders []domain.Order) Listing {
	if orders == nil {
		orders = []domain.Order{}
	}
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(decimal.NewFromFloat(order.Total()))
	}
	return Listing{
		Orders:     orders,
		Count:      len(orders),
		GrandTotal: total.Round(2).InexactFloat64(),
	}
}

// Service: сервис заказов кассы.
type Service struct {
	gateway   OrderGateway
	counter   domain.SequenceCounter
	publisher domain.OrderEventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
	prefix    string
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithSequenceCounter включает серверную нумерацию заказов.
func WithSequenceCounter(counter domain.SequenceCounter) Option {
	return func(s *Service) { s.counter = counter }
}

// WithPublisher включает публикацию событий заказов.
func WithPublisher(publisher domain.OrderEventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// WithMetrics включает бизнес-метрики.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrderIDPrefix задаёт префикс номеров заказов.
func WithOrderIDPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService создаёт сервис поверх шлюза.
func NewService(gw OrderGateway, opts ...Option) *Service {
	s := &Service{
		gateway: gw,
		logger:  log.WithField("component", "pos-service"),
		prefix:  domain.DefaultOrderIDPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now возвращает текущее время по часам сервиса.
func (s *Service) Now() time.Time {
	return s.now()
}

// NextOrderID предлагает номер для нового заказа.
// Со счётчиком номер выдаёт хранилище; без него (или при сбое счётчика) номер
// считается по количеству уже сохранённых заказов.
func (s *Service) NextOrderID(ctx context.Context) (string, error) {
	now := s.now()

	if s.counter != nil {
		seq, err := s.counter.Next(ctx, domain.SequenceScope(now))
		if err == nil {
			return domain.FormatOrderID(s.prefix, now.Year(), seq), nil
		}
		s.logger.WithError(err).Warn("sequence counter failed, falling back to order count")
	}

	orders, err := s.gateway.ListOrders(ctx)
	id := domain.FormatOrderID(s.prefix, now.Year(), int64(len(orders))+1)
	if err != nil {
		return id, fmt.Errorf("count orders for next id: %w", err)
	}
	return id, nil
}

// CreateOrder сохраняет черновик как заказ. Пустой номер заполняется через NextOrderID.
func (s *Service) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	if draft.ID == "" {
		id, err := s.NextOrderID(ctx)
		if err != nil {
			return domain.Order{}, err
		}
		draft.ID = id
	}

	order, err := draft.Finalize(s.now())
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.MatchesOrderIDPattern(order.ID) {
		s.logger.WithField("order_id", order.ID).Warn("order id does not match PREFIX-YEAR-SEQ")
	}

	if err := s.gateway.InsertOrder(ctx, order); err != nil {
		return domain.Order{}, err
	}

	s.metrics.RecordOrderCreated(order.Total())
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    order.Total(),
	}).Info("order created")

	if s.publisher != nil {
		if err := s.publisher.OrderCreated(ctx, order); err != nil {
			s.metrics.RecordPublishFailure()
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order.created")
		}
	}
	return order, nil
}

// ListOrders возвращает все заказы со сводкой. При сбое: пустой список и ошибка.
func (s *Service) ListOrders(ctx context.Context) (Listing, error) {
	orders, err := s.gateway.ListOrders(ctx)
	return NewListing(orders), err
}

// GetOrder возвращает заказ по номеру.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.gateway.GetOrder(ctx, id)
}

// DeleteOrder удаляет заказ; отсутствие заказа ошибкой не считается.
// Событие order.deleted публикуется только для реально удалённого заказа.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	deleted, err := s.gateway.DeleteOrder(ctx, id)
	if err != nil || !deleted {
		return err
	}
	s.metrics.RecordOrdersDeleted(1)
	s.publishDeleted(ctx, id)
	return nil
}

// DeleteAllOrders удаляет все заказы по одному. Частичный результат не откатывается.
func (s *Service) DeleteAllOrders(ctx context.Context) (gateway.BulkDeleteReport, error) {
	orders, err := s.gateway.ListOrders(ctx)
	if err != nil {
		return gateway.BulkDeleteReport{Deleted: []string{}, Remaining: []string{}, Err: err}, err
	}

	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	report := s.gateway.DeleteOrders(ctx, ids)
	s.metrics.RecordOrdersDeleted(len(report.Deleted))
	for _, id := range report.Deleted {
		s.publishDeleted(ctx, id)
	}
	return report, report.Err
}

func (s *Service) publishDeleted(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.OrderDeleted(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		s.metrics.RecordPublishFailure()
		s.logger.WithError(err).WithField("order_id", id).Warn("failed to publish order.deleted")
	}
}
