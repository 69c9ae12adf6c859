// Package document описывает форму заказа в коллекции: плоский JSON/BSON-объект
// без идентификаторов позиций.
package document

import (
	"fmt"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// ItemDocument: позиция заказа в хранилище.
type ItemDocument struct {
	Name  string  `json:"name" bson:"name"`
	Qty   float64 `json:"qty" bson:"qty"`
	Price float64 `json:"price" bson:"price"`
}

// OrderDocument: заказ в хранилище.
type OrderDocument struct {
	ID           string         `json:"id" bson:"id"`
	CustomerName string         `json:"customerName" bson:"customerName"`
	Phone        string         `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt    string         `json:"createdAt" bson:"createdAt"`
	Items        []ItemDocument `json:"items" bson:"items"`
}

// FromOrder переводит доменный заказ в документ. ID позиций не сохраняются.
func FromOrder(order domain.Order) OrderDocument {
	return OrderDocument{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Phone:        order.Phone,
		CreatedAt:    order.CreatedAtISO(),
		Items:        FromItems(order.Items),
	}
}

// FromItems переводит позиции в документную форму, сохраняя порядок.
func FromItems(items []domain.OrderItem) []ItemDocument {
	docs := make([]ItemDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, ItemDocument{
			Name:  item.Name,
			Qty:   item.Qty,
			Price: item.Price,
		})
	}
	return docs
}

// ToOrder восстанавливает доменный заказ из документа.
func (d OrderDocument) ToOrder() (domain.Order, error) {
	createdAt, err := domain.ParseISO(d.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse createdAt of order %q: %w", d.ID, err)
	}
	return domain.Order{
		ID:           d.ID,
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		CreatedAt:    createdAt,
		Items:        ToItems(d.Items),
	}, nil
}

// ToItems восстанавливает позиции; числа нормализуются на случай ручных правок в базе.
func ToItems(docs []ItemDocument) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.OrderItem{
			Name:  doc.Name,
			Qty:   domain.Coerce(doc.Qty),
			Price: domain.Coerce(doc.Price),
		})
	}
	return items
}
