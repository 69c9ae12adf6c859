package main

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

func TestRun_ConfigurationErrorIsFatal(t *testing.T) {
	t.Setenv("POS_STORE", "mongo")
	t.Setenv("POS_MONGO_URI", "")

	err := run(context.Background())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRun_MissingJWTSecret(t *testing.T) {
	t.Setenv("POS_STORE", "memory")
	t.Setenv("POS_JWT_SECRET", "")

	err := run(context.Background())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
