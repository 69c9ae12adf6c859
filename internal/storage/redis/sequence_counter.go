// Package redis выдаёт номера заказов через атомарный INCR.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

const (
	keyPrefix = "pos:order-seq:"
	opTimeout = 2 * time.Second
)

// Options описывает подключение к Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// SequenceCounter: счётчик номеров заказов на ключах pos:order-seq:<scope>.
type SequenceCounter struct {
	client goredis.UniversalClient
}

// NewClient создаёт клиента; адрес допускает схему redis:// или rediss://.
func NewClient(opts Options) *goredis.Client {
	addr := opts.Addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if parsed, err := goredis.ParseURL(addr); err == nil {
			if opts.Password != "" {
				parsed.Password = opts.Password
			}
			return goredis.NewClient(parsed)
		}
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// NewSequenceCounter оборачивает готовый клиент.
func NewSequenceCounter(client goredis.UniversalClient) *SequenceCounter {
	return &SequenceCounter{client: client}
}

// Key возвращает ключ счётчика для scope.
func Key(scope string) string {
	return keyPrefix + scope
}

func (c *SequenceCounter) Next(ctx context.Context, scope string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := c.client.Incr(ctx, Key(scope)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", Key(scope), err)
	}
	return value, nil
}

// Seed выставляет значение счётчика, если ключа ещё нет (например, после миграции данных).
func (c *SequenceCounter) Seed(ctx context.Context, scope string, value int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ok, err := c.client.SetNX(ctx, Key(scope), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("seed %s: %w", Key(scope), err)
	}
	return ok, nil
}

// Ping проверяет доступность Redis.
func (c *SequenceCounter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

var _ domain.SequenceCounter = (*SequenceCounter)(nil)
