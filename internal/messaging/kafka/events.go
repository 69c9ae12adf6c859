package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderDeleted EventType = "order.deleted"
)

// TopicOrderEvents: топик событий заказов.
const TopicOrderEvents = "pos.order.events"

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType    EventType `json:"event_type"`
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	ItemsCount   int       `json:"items_count"`
	Total        float64   `json:"total"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewOrderCreatedEvent собирает событие о новом заказе.
func NewOrderCreatedEvent(order domain.Order, now time.Time) OrderEvent {
	return OrderEvent{
		EventType:    EventTypeOrderCreated,
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		ItemsCount:   len(order.Items),
		Total:        order.Total(),
		Timestamp:    now.UTC(),
	}
}

// NewOrderDeletedEvent собирает событие об удалении заказа.
func NewOrderDeletedEvent(orderID string, now time.Time) OrderEvent {
	return OrderEvent{
		EventType: EventTypeOrderDeleted,
		OrderID:   orderID,
		Timestamp: now.UTC(),
	}
}
