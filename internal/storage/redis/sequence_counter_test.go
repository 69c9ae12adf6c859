package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCounterForIntegrationTest(t *testing.T) *SequenceCounter {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("POS_REDIS_ADDR"))
	if addr == "" {
		addr = "localhost:6379"
	}
	client := NewClient(Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	counter := NewSequenceCounter(client)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := counter.Ping(ctx); err != nil {
		t.Skipf("redis is not available for integration tests: %v", err)
	}
	return counter
}

func TestKey(t *testing.T) {
	assert.Equal(t, "pos:order-seq:2025", Key("2025"))
}

func TestNewClient_ParsesURL(t *testing.T) {
	client := NewClient(Options{Addr: "redis://localhost:6380/2", Password: "secret"})
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
}

func TestSequenceCounter_RedisNextAndSeed(t *testing.T) {
	counter := openCounterForIntegrationTest(t)
	scope := "test-" + uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	t.Cleanup(func() { _ = counter.client.Del(context.Background(), Key(scope)).Err() })

	seeded, err := counter.Seed(ctx, scope, 11)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = counter.Seed(ctx, scope, 100)
	require.NoError(t, err)
	assert.False(t, seeded, "seed must not overwrite existing counter")

	next, err := counter.Next(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(12), next)
}
