package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

func sampleOrder(id, customer string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:           id,
		CustomerName: customer,
		Phone:        "95664 42121",
		CreatedAt:    createdAt,
		Items: []domain.OrderItem{
			{ID: "i-1", Name: "shirt", Qty: 5, Price: 20},
			{ID: "i-2", Name: "saree", Qty: 1, Price: 150.5},
		},
	}
}

func TestOrderStore_PostgresInsertFindDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orders := NewOrderStore(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := orders.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	createdAt := time.Date(2025, time.January, 5, 14, 30, 0, 123000000, time.UTC)
	first := sampleOrder("VDW-2025-002", "JK Paradise", createdAt)
	second := sampleOrder("VDW-2025-001", "", createdAt.Add(time.Minute))

	for _, order := range []domain.Order{first, second} {
		if err := orders.InsertOne(ctx, order); err != nil {
			t.Fatalf("insert %s: %v", order.ID, err)
		}
	}

	all, err := orders.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("orders must come back in insertion order: %+v", all)
	}

	got, err := orders.FindOne(ctx, first.ID)
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if !got.CreatedAt.Equal(createdAt) || got.Phone != first.Phone || got.CustomerName != first.CustomerName {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != 2 || got.Items[1].Price != 150.5 || got.Items[0].ID != "" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	deleted, err := orders.DeleteOne(ctx, first.ID)
	if err != nil || !deleted {
		t.Fatalf("delete existing: deleted=%v err=%v", deleted, err)
	}
	deleted, err = orders.DeleteOne(ctx, "VDW-2025-404")
	if err != nil || deleted {
		t.Fatalf("delete unknown must be a no-op: deleted=%v err=%v", deleted, err)
	}

	if _, err := orders.FindOne(ctx, first.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderStore_PostgresDuplicateIDs(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orders := NewOrderStore(store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := orders.InsertOne(ctx, sampleOrder("VDW-2025-001", "first", now)); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := orders.InsertOne(ctx, sampleOrder("VDW-2025-001", "second", now)); err != nil {
		t.Fatalf("duplicate ids must be accepted: %v", err)
	}

	if _, err := orders.DeleteOne(ctx, "VDW-2025-001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left, err := orders.FindOne(ctx, "VDW-2025-001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if left.CustomerName != "second" {
		t.Fatalf("delete must remove the earliest record, left %q", left.CustomerName)
	}
}

func TestSequenceCounter_PostgresNext(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	counter := NewSequenceCounter(store)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for want := int64(1); want <= 3; want++ {
		got, err := counter.Next(ctx, "2025")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	got, err := counter.Next(ctx, "2026")
	if err != nil || got != 1 {
		t.Fatalf("new scope must start at 1: got=%d err=%v", got, err)
	}
}
