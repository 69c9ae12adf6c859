package kafka

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// EventPublisher публикует события заказов в Kafka; ключ сообщения: номер заказа.
type EventPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewEventPublisher создаёт publisher поверх producer. Пустой topic: TopicOrderEvents.
func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &EventPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *EventPublisher) OrderCreated(ctx context.Context, order domain.Order) error {
	return p.producer.PublishEvent(ctx, p.topic, order.ID, NewOrderCreatedEvent(order, p.now()))
}

func (p *EventPublisher) OrderDeleted(ctx context.Context, orderID string) error {
	return p.producer.PublishEvent(ctx, p.topic, orderID, NewOrderDeletedEvent(orderID, p.now()))
}

var _ domain.OrderEventPublisher = (*EventPublisher)(nil)
