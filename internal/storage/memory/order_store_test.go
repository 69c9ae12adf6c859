package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/memory"
)

func newOrder(id string) domain.Order {
	return domain.Order{
		ID:           id,
		CustomerName: "JK Paradise",
		CreatedAt:    time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ID: "item-1", Name: "shirt", Qty: 5, Price: 20},
		},
	}
}

func TestOrderStore_InsertFindOne(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	order := newOrder("VDW-2025-001")

	if err := store.InsertOne(ctx, order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stored, err := store.FindOne(ctx, order.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %s, got %s", order.ID, stored.ID)
	}
	if stored.Items[0].ID != "" {
		t.Fatalf("item id must not be persisted, got %q", stored.Items[0].ID)
	}
	if stored.Items[0].Name != "shirt" || stored.Items[0].Qty != 5 {
		t.Fatalf("unexpected item: %+v", stored.Items[0])
	}
}

func TestOrderStore_FindOneMissing(t *testing.T) {
	store := memory.NewOrderStore()
	_, err := store.FindOne(context.Background(), "VDW-2025-404")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderStore_FindAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	for _, id := range []string{"VDW-2025-003", "VDW-2025-001", "VDW-2025-002"} {
		if err := store.InsertOne(ctx, newOrder(id)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	orders, err := store.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != "VDW-2025-003" || orders[2].ID != "VDW-2025-002" {
		t.Fatalf("unexpected order: %s, %s, %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}
}

func TestOrderStore_DuplicateIDsAndDeleteOne(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	first := newOrder("VDW-2025-001")
	second := newOrder("VDW-2025-001")
	second.CustomerName = "URC Resort"

	if err := store.InsertOne(ctx, first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertOne(ctx, second); err != nil {
		t.Fatalf("duplicate insert must not fail: %v", err)
	}

	deleted, err := store.DeleteOne(ctx, "VDW-2025-001")
	if err != nil || !deleted {
		t.Fatalf("expected first duplicate to be deleted, got %v, %v", deleted, err)
	}

	left, err := store.FindOne(ctx, "VDW-2025-001")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if left.CustomerName != "URC Resort" {
		t.Fatalf("expected second duplicate to remain, got %s", left.CustomerName)
	}

	deleted, err = store.DeleteOne(ctx, "VDW-2025-999")
	if err != nil || deleted {
		t.Fatalf("delete of unknown id must be a no-op, got %v, %v", deleted, err)
	}
}

func TestOrderStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	if err := store.InsertOne(ctx, newOrder("VDW-2025-001")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	orders, _ := store.FindAll(ctx)
	orders[0].Items[0].Name = "mutated"

	stored, _ := store.FindOne(ctx, "VDW-2025-001")
	if stored.Items[0].Name != "shirt" {
		t.Fatal("store must not share item slices with callers")
	}
}

func TestSequenceCounter_Next(t *testing.T) {
	ctx := context.Background()
	counter := memory.NewSequenceCounter(map[string]int64{"2025": 11})

	got, err := counter.Next(ctx, "2025")
	if err != nil || got != 12 {
		t.Fatalf("expected 12, got %d (%v)", got, err)
	}
	got, _ = counter.Next(ctx, "2026")
	if got != 1 {
		t.Fatalf("new scope must start at 1, got %d", got)
	}
}

func TestSequenceCounter_Concurrent(t *testing.T) {
	ctx := context.Background()
	counter := memory.NewSequenceCounter(nil)

	const workers = 50
	seen := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := counter.Next(ctx, "2025")
			seen <- v
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]struct{}, workers)
	for v := range seen {
		unique[v] = struct{}{}
	}
	if len(unique) != workers {
		t.Fatalf("expected %d unique values, got %d", workers, len(unique))
	}
}
