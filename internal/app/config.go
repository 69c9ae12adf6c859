package app

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// EnvPrefix: префикс переменных окружения: POS_STORE, POS_MONGO_URI...
const EnvPrefix = "POS"

// Хранилища заказов.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Счётчики номеров заказов. CounterNone оставляет нумерацию по количеству заказов.
const (
	CounterNone     = "none"
	CounterMemory   = "memory"
	CounterPostgres = "postgres"
	CounterRedis    = "redis"
)

// Config описывает настройки запуска кассы.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Timezone    string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`

	OrderIDPrefix string `envconfig:"ORDER_ID_PREFIX" default:"VDW"`

	Store           string `envconfig:"STORE" default:"memory"`
	PostgresDSN     string `envconfig:"POSTGRES_DSN"`
	PostgresMigrate bool   `envconfig:"POSTGRES_MIGRATE" default:"true"`
	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"vela_dry_wash"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"orders"`

	Counter       string `envconfig:"COUNTER" default:"none"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"pos.order.events"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"pos-exports"`
	MinioRegion    string `envconfig:"MINIO_REGION" default:"us-east-1"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	ArchiveHour    uint   `envconfig:"ARCHIVE_HOUR" default:"23"`

	JWTSecret        string        `envconfig:"JWT_SECRET"`
	OperatorUsername string        `envconfig:"OPERATOR_USERNAME" default:"admin"`
	OperatorPassword string        `envconfig:"OPERATOR_PASSWORD" default:"Admin1234"`
	TokenTTL         time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
}

// LoadConfig читает конфигурацию из окружения и проверяет её.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.Counter = strings.ToLower(strings.TrimSpace(c.Counter))
	if c.Counter == "" {
		c.Counter = CounterNone
	}
	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
}

// Validate проверяет, что для выбранных хранилищ заданы параметры подключения.
// Любая ошибка оборачивает domain.ErrConfiguration.
func (c Config) Validate() error {
	var problems []string

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			problems = append(problems, "POS_POSTGRES_DSN is required for postgres store")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			problems = append(problems, "POS_MONGO_URI is required for mongo store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store %q (use memory|postgres|mongo)", c.Store))
	}

	switch c.Counter {
	case CounterNone, CounterMemory:
	case CounterPostgres:
		if c.PostgresDSN == "" {
			problems = append(problems, "POS_POSTGRES_DSN is required for postgres counter")
		}
	case CounterRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "POS_REDIS_ADDR is required for redis counter")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown counter %q (use none|memory|postgres|redis)", c.Counter))
	}

	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		problems = append(problems, "POS_MINIO_ACCESS_KEY and POS_MINIO_SECRET_KEY are required with POS_MINIO_ENDPOINT")
	}
	if c.ArchiveHour > 23 {
		problems = append(problems, "POS_ARCHIVE_HOUR must be within 0..23")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid POS_TIMEZONE %q", c.Timezone))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid POS_LOG_LEVEL %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAPI дополнительно проверяет параметры HTTP API; CLI без них обходится.
func (c Config) ValidateAPI() error {
	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		return fmt.Errorf("%w: POS_JWT_SECRET is required", domain.ErrConfiguration)
	case c.OperatorUsername == "" || c.OperatorPassword == "":
		return fmt.Errorf("%w: operator credentials must not be empty", domain.ErrConfiguration)
	}
	return nil
}

// Location возвращает часовой пояс для чеков и выгрузок.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConfigureLogging применяет уровень логирования из конфигурации.
func (c Config) ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
}
