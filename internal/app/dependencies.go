package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/health"
	"github.com/vladislavdragonenkov/laundry-pos/internal/jobs"
	"github.com/vladislavdragonenkov/laundry-pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/laundry-pos/internal/metrics"
	"github.com/vladislavdragonenkov/laundry-pos/internal/service/pos"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/memory"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/mongo"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/objectstore"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/laundry-pos/internal/storage/redis"
	"github.com/vladislavdragonenkov/laundry-pos/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Config       Config
	Gateway      *gateway.Gateway
	Service      *pos.Service
	Archive      *objectstore.MinioArchive
	Archiver     *jobs.ExportArchiver
	OrderMetrics *metrics.OrderMetrics
	HTTPMetrics  *metrics.HTTPMetrics
	Health       *health.Handler
	Logger       *log.Entry

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// NewDependencies собирает хранилище, шлюз, сервис и необязательные интеграции.
// Недоступность хранилища на старте не фатальна: шлюз повторит рукопожатие при
// следующей операции. Фатальны только ошибки конфигурации.
func NewDependencies(ctx context.Context, cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dependencies{
		Config:       cfg,
		OrderMetrics: metrics.NewOrderMetrics(registerer),
		HTTPMetrics:  metrics.NewHTTPMetrics(registerer),
		Health:       health.NewHandler(version.GetVersion()),
		Logger:       logger,
	}

	pg, err := d.openPostgres(ctx)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}

	store, err := d.orderStore(pg)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}

	d.Gateway = gateway.New(store,
		gateway.WithLogger(logger.WithField("layer", "gateway")),
		gateway.WithMetrics(metrics.NewGatewayMetrics(registerer)),
	)
	d.addCloser("order store", d.Gateway.Close)
	if err := d.Gateway.Connect(ctx); err != nil {
		logger.WithError(err).Warn("order store is not reachable yet, the gateway will retry")
	}
	d.Health.RegisterChecker("order-store", health.NewPingChecker("order-store", d.Gateway.Ping))

	opts := []pos.Option{
		pos.WithMetrics(d.OrderMetrics),
		pos.WithLogger(logger.WithField("layer", "service")),
		pos.WithOrderIDPrefix(cfg.OrderIDPrefix),
	}
	counter, err := d.sequenceCounter(pg)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	if counter != nil {
		opts = append(opts, pos.WithSequenceCounter(counter))
	}
	if publisher := d.eventPublisher(); publisher != nil {
		opts = append(opts, pos.WithPublisher(publisher))
	}
	d.Service = pos.NewService(d.Gateway, opts...)

	if err := d.exportArchive(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, err
	}

	return d, nil
}

func (d *Dependencies) openPostgres(ctx context.Context) (*postgres.Store, error) {
	cfg := d.Config
	if cfg.Store != StorePostgres && cfg.Counter != CounterPostgres {
		return nil, nil
	}

	pg, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	d.addCloser("postgres", func(context.Context) error { return pg.Close() })

	if cfg.PostgresMigrate {
		if err := postgres.NewMigrator(pg, d.Logger.WithField("layer", "migrator")).Up(ctx, 0); err != nil {
			d.Logger.WithError(err).Warn("postgres migrations were not applied")
		}
	}
	return pg, nil
}

func (d *Dependencies) orderStore(pg *postgres.Store) (domain.OrderStore, error) {
	cfg := d.Config
	switch cfg.Store {
	case StoreMemory:
		d.Logger.Warn("using in-memory order store, orders are lost on restart")
		return memory.NewOrderStore(), nil
	case StorePostgres:
		return postgres.NewOrderStore(pg), nil
	case StoreMongo:
		return mongo.NewOrderStore(mongo.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", domain.ErrConfiguration, cfg.Store)
	}
}

func (d *Dependencies) sequenceCounter(pg *postgres.Store) (domain.SequenceCounter, error) {
	cfg := d.Config
	switch cfg.Counter {
	case CounterNone:
		return nil, nil
	case CounterMemory:
		return memory.NewSequenceCounter(nil), nil
	case CounterPostgres:
		return postgres.NewSequenceCounter(pg), nil
	case CounterRedis:
		client := redisstore.NewClient(redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		d.addCloser("redis", func(context.Context) error { return client.Close() })
		counter := redisstore.NewSequenceCounter(client)
		d.Health.RegisterChecker("sequence-counter", health.NewOptionalChecker("sequence-counter", counter.Ping))
		return counter, nil
	default:
		return nil, fmt.Errorf("%w: unknown counter %q", domain.ErrConfiguration, cfg.Counter)
	}
}

func (d *Dependencies) eventPublisher() domain.OrderEventPublisher {
	producer, err := initKafkaProducer(d.Config.KafkaBrokers, d.Logger)
	if err != nil || producer == nil {
		return nil
	}
	d.addCloser("kafka", func(context.Context) error { return closeKafka(producer, d.Logger) })
	return kafka.NewEventPublisher(producer, d.Config.KafkaTopic)
}

func (d *Dependencies) exportArchive(ctx context.Context) error {
	cfg := d.Config
	if cfg.MinioEndpoint == "" {
		return nil
	}

	archive, err := objectstore.NewMinioArchive(objectstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		Region:    cfg.MinioRegion,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		d.Logger.WithError(err).Warn("export archive bucket is not ready")
	}

	d.Archive = archive
	d.Archiver = jobs.NewExportArchiver(d.Service, archive, cfg.Location(), d.OrderMetrics)
	d.Health.RegisterChecker("object-store", health.NewOptionalChecker("object-store", archive.Ping))
	return nil
}

func (d *Dependencies) addCloser(name string, fn func(context.Context) error) {
	d.closers = append(d.closers, closer{name: name, fn: fn})
}

// Close освобождает ресурсы в порядке, обратном созданию.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		c := d.closers[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
