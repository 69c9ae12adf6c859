// Package httpapi публикует операции кассы по HTTP (echo).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
	"github.com/vladislavdragonenkov/laundry-pos/internal/receipt"
	"github.com/vladislavdragonenkov/laundry-pos/internal/service/pos"
)

const defaultTokenTTL = 12 * time.Hour

// OrderService: операции кассы, которые обслуживает API. Реализуется *pos.Service.
type OrderService interface {
	NextOrderID(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	ListOrders(ctx context.Context) (pos.Listing, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	DeleteAllOrders(ctx context.Context) (gateway.BulkDeleteReport, error)
}

// Config: параметры HTTP API.
type Config struct {
	JWTSecret        string
	OperatorUsername string
	OperatorPassword string
	TokenTTL         time.Duration
	Location         *time.Location
	Receipt          receipt.Profile
}

// Server: HTTP API кассы.
type Server struct {
	cfg          Config
	orders       OrderService
	echo         *echo.Echo
	httpMetrics  *metrics.HTTPMetrics
	orderMetrics *metrics.OrderMetrics
	logger       *log.Entry
	now          func() time.Time
}

// Option настраивает Server.
type Option func(*Server)

// WithHTTPMetrics включает метрики запросов.
func WithHTTPMetrics(m *metrics.HTTPMetrics) Option {
	return func(s *Server) { s.httpMetrics = m }
}

// WithOrderMetrics включает счётчик выгрузок.
func WithOrderMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Server) { s.orderMetrics = m }
}

// WithLogger задаёт логгер запросов.
func WithLogger(logger *log.Entry) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет источник времени (срок токена, имя файла выгрузки).
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New собирает echo-приложение со всеми маршрутами.
func New(cfg Config, orders OrderService, opts ...Option) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	s := &Server{
		cfg:    cfg,
		orders: orders,
		logger: log.WithField("component", "httpapi"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(s.metricsMiddleware)
	e.Use(s.requestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	v1 := e.Group("/v1")
	v1.POST("/auth/login", s.login)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(cfg.JWTSecret),
		SigningMethod: "HS256",
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		},
	}))

	protected.GET("/orders", s.listOrders)
	protected.POST("/orders", s.createOrder)
	protected.DELETE("/orders", s.deleteAllOrders)
	protected.GET("/orders/next-id", s.nextOrderID)
	protected.GET("/orders/:id", s.getOrder)
	protected.DELETE("/orders/:id", s.deleteOrder)
	protected.GET("/orders/:id/receipt", s.orderReceipt)

	protected.GET("/exports/orders.xlsx", s.exportXLSX)
	protected.GET("/exports/orders.pdf", s.exportPDF)

	protected.GET("/suggestions/items", s.suggestItems)
	protected.GET("/suggestions/customers", s.suggestCustomers)

	s.echo = e
	return s
}

// Handler возвращает http.Handler для встраивания и тестов.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start слушает addr до вызова Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.WithField("addr", addr).Info("http api listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
