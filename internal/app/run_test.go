package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

func TestRun_MemoryGracefulShutdown(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.JWTSecret = "test-secret"
	cfg.OperatorUsername = "admin"
	cfg.OperatorPassword = "Admin1234"

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_RequiresJWTSecret(t *testing.T) {
	cfg := memoryConfig()
	cfg.OperatorUsername = "admin"
	cfg.OperatorPassword = "Admin1234"

	err := Run(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
