package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderDraft: заказ, который оператор ещё заполняет.
type OrderDraft struct {
	ID           string
	CustomerName string
	Phone        string
	CreatedAt    time.Time
	Items        []OrderItem
}

// ItemPatch описывает частичное изменение позиции черновика.
type ItemPatch struct {
	Name  *string
	Qty   *float64
	Price *float64
}

// NewOrderDraft создаёт черновик и фиксирует момент создания.
func NewOrderDraft(now time.Time) *OrderDraft {
	return &OrderDraft{CreatedAt: StorageTime(now)}
}

// AddItem добавляет позицию со свежим идентификатором и возвращает его.
func (d *OrderDraft) AddItem(name string, qty, price float64) string {
	id := NewItemID()
	d.Items = append(d.Items, OrderItem{
		ID:    id,
		Name:  name,
		Qty:   Coerce(qty),
		Price: Coerce(price),
	})
	return id
}

// RemoveItem удаляет позицию по идентификатору. Идентификатор повторно не выдаётся.
func (d *OrderDraft) RemoveItem(id string) bool {
	for i, item := range d.Items {
		if item.ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateItem применяет patch к позиции с указанным идентификатором.
func (d *OrderDraft) UpdateItem(id string, patch ItemPatch) bool {
	for i := range d.Items {
		if d.Items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			d.Items[i].Name = *patch.Name
		}
		if patch.Qty != nil {
			d.Items[i].Qty = Coerce(*patch.Qty)
		}
		if patch.Price != nil {
			d.Items[i].Price = Coerce(*patch.Price)
		}
		return true
	}
	return false
}

// Total возвращает текущую сумму черновика, включая позиции без названия.
func (d *OrderDraft) Total() float64 {
	return OrderTotal(Order{Items: d.Items})
}

// Finalize превращает черновик в заказ для сохранения: позиции без названия
// отбрасываются, числа нормализуются, CreatedAt проставляется из now, если не задан.
func (d *OrderDraft) Finalize(now time.Time) (Order, error) {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	items := make([]OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		item = NormalizeItem(item)
		if item.Name == "" {
			continue
		}
		if item.ID == "" {
			item.ID = NewItemID()
		}
		items = append(items, item)
	}

	order := Order{
		ID:           strings.TrimSpace(d.ID),
		CustomerName: strings.TrimSpace(d.CustomerName),
		Phone:        strings.TrimSpace(d.Phone),
		CreatedAt:    StorageTime(createdAt),
		Items:        items,
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Order{}, errors.Join(errs...)
	}
	return order, nil
}
