// Package app собирает кассу из конфигурации и запускает её серверы.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/laundry-pos/internal/health"
	"github.com/vladislavdragonenkov/laundry-pos/internal/httpapi"
	"github.com/vladislavdragonenkov/laundry-pos/internal/jobs"
	"github.com/vladislavdragonenkov/laundry-pos/internal/receipt"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает HTTP API, сервер метрик и планировщик архивации и держит их до
// отмены ctx. Возвращает ctx.Err() после штатной остановки.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}

	logger := log.WithField("component", "app")
	deps, err := NewDependencies(ctx, cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := deps.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("dependencies closed with error")
		}
	}()

	api := httpapi.New(httpapi.Config{
		JWTSecret:        cfg.JWTSecret,
		OperatorUsername: cfg.OperatorUsername,
		OperatorPassword: cfg.OperatorPassword,
		TokenTTL:         cfg.TokenTTL,
		Location:         cfg.Location(),
		Receipt:          receipt.DefaultProfile(),
	}, deps.Service,
		httpapi.WithHTTPMetrics(deps.HTTPMetrics),
		httpapi.WithOrderMetrics(deps.OrderMetrics),
		httpapi.WithLogger(logger.WithField("layer", "http")),
	)

	if deps.Archiver != nil {
		scheduler, err := jobs.NewScheduler(deps.Archiver, cfg.ArchiveHour, cfg.Location())
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.WithError(err).Warn("scheduler shutdown with error")
			}
		}()
	}

	metricsSrv := newMetricsServer(cfg.MetricsAddr, deps.Health)
	metricsLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Start(cfg.HTTPAddr)
	})
	g.Go(func() error {
		logger.Infof("метрики доступны по адресу %s/metrics", metricsLis.Addr())
		if err := metricsSrv.Serve(metricsLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http api shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// newMetricsServer отдаёт /metrics для Prometheus и health-пробы.
func newMetricsServer(addr string, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)

	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
