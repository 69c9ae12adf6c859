package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

func TestOrderDraft_AddRemoveUpdate(t *testing.T) {
	draft := domain.NewOrderDraft(time.Now())

	first := draft.AddItem("shirt", 1, 20)
	second := draft.AddItem("pant", 2, 30)
	if first == second {
		t.Fatal("item ids must be unique")
	}

	if !draft.RemoveItem(first) {
		t.Fatal("expected first item to be removed")
	}
	if draft.RemoveItem(first) {
		t.Fatal("removed item must not be found again")
	}

	third := draft.AddItem("saree", 1, 150)
	if third == first {
		t.Fatal("removed item id must not be reused")
	}

	qty := -4.0
	name := "lungi"
	if !draft.UpdateItem(second, domain.ItemPatch{Name: &name, Qty: &qty}) {
		t.Fatal("expected update to find the item")
	}
	if draft.Items[0].Name != "lungi" || draft.Items[0].Qty != 0 {
		t.Fatalf("unexpected item after patch: %+v", draft.Items[0])
	}
	if draft.UpdateItem("missing", domain.ItemPatch{Name: &name}) {
		t.Fatal("update of unknown id must report false")
	}

	if draft.Items[1].ID != third {
		t.Fatalf("expected insertion order to be preserved, got %+v", draft.Items)
	}
	if got := draft.Total(); got != 150 {
		t.Fatalf("expected total 150, got %v", got)
	}
}

func TestOrderDraft_Finalize(t *testing.T) {
	created := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	draft := &domain.OrderDraft{
		ID:           " VDW-2025-003 ",
		CustomerName: " URC Lodge ",
		CreatedAt:    created,
	}
	draft.AddItem("white-towel", 10, 12)
	draft.AddItem("   ", 3, 100)
	draft.AddItem("bed-sheet", 4, 35)
	draft.Items = append(draft.Items, domain.OrderItem{Name: "socks", Qty: -1, Price: 5})

	order, err := draft.Finalize(time.Now())
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if order.ID != "VDW-2025-003" || order.CustomerName != "URC Lodge" {
		t.Fatalf("expected trimmed fields, got %+v", order)
	}
	if !order.CreatedAt.Equal(created) {
		t.Fatalf("createdAt must be preserved, got %v", order.CreatedAt)
	}
	if len(order.Items) != 3 {
		t.Fatalf("expected blank item to be dropped, got %d items", len(order.Items))
	}
	names := []string{order.Items[0].Name, order.Items[1].Name, order.Items[2].Name}
	if names[0] != "white-towel" || names[1] != "bed-sheet" || names[2] != "socks" {
		t.Fatalf("unexpected order of items: %v", names)
	}
	if order.Items[2].Qty != 0 || order.Items[2].ID == "" {
		t.Fatalf("expected coerced qty and generated id, got %+v", order.Items[2])
	}
	if order.Total() != 260 {
		t.Fatalf("expected total 260, got %v", order.Total())
	}
}

func TestOrderDraft_FinalizeStampsCreatedAt(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	draft := &domain.OrderDraft{ID: "VDW-2025-010"}

	order, err := draft.Finalize(now)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !order.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v", now, order.CreatedAt)
	}
	if len(order.Items) != 0 {
		t.Fatalf("expected empty items, got %d", len(order.Items))
	}
}

func TestOrderDraft_FinalizeRequiresID(t *testing.T) {
	draft := &domain.OrderDraft{}
	_, err := draft.Finalize(time.Now())
	if !errors.Is(err, domain.ErrOrderIDRequired) {
		t.Fatalf("expected ErrOrderIDRequired, got %v", err)
	}
	if !domain.IsValidation(err) {
		t.Fatal("expected validation error")
	}
}

func TestOrderDraft_CreatedAtHasStoragePrecision(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 987654321, time.FixedZone("IST", 5*3600+1800))
	want := time.Date(2025, time.June, 1, 6, 30, 0, 987000000, time.UTC)

	if got := domain.NewOrderDraft(now).CreatedAt; !got.Equal(want) || got.Location() != time.UTC {
		t.Fatalf("draft createdAt: expected %v, got %v", want, got)
	}

	draft := &domain.OrderDraft{ID: "VDW-2025-011"}
	order, err := draft.Finalize(now)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if order.CreatedAt != want {
		t.Fatalf("order createdAt: expected %v, got %v", want, order.CreatedAt)
	}

	parsed, err := domain.ParseISO(order.CreatedAtISO())
	if err != nil {
		t.Fatalf("parse stored createdAt: %v", err)
	}
	if parsed != order.CreatedAt {
		t.Fatalf("stored createdAt changed: %v != %v", parsed, order.CreatedAt)
	}
}
