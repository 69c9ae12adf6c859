package domain

import "context"

// OrderStore описывает коллекцию документов заказов.
// Реализации возвращают ошибки как есть; их поглощение: задача gateway.
type OrderStore interface {
	// Connect устанавливает сессию (анонимный вход) с хранилищем.
	Connect(ctx context.Context) error
	// FindAll возвращает все документы в порядке, определённом хранилищем.
	FindAll(ctx context.Context) ([]Order, error)
	// InsertOne записывает новый документ без проверки дубликатов ID.
	InsertOne(ctx context.Context, order Order) error
	// DeleteOne удаляет не более одного документа с указанным ID и сообщает, был ли он.
	DeleteOne(ctx context.Context, id string) (bool, error)
	// FindOne возвращает первый документ с указанным ID или ErrOrderNotFound.
	FindOne(ctx context.Context, id string) (Order, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Close освобождает подключение.
	Close(ctx context.Context) error
}

// SequenceCounter выдаёт номера заказов на стороне хранилища.
type SequenceCounter interface {
	// Next атомарно увеличивает счётчик для scope (обычно год) и возвращает новое значение.
	Next(ctx context.Context, scope string) (int64, error)
}

// OrderEventPublisher публикует события жизненного цикла заказа.
type OrderEventPublisher interface {
	OrderCreated(ctx context.Context, order Order) error
	OrderDeleted(ctx context.Context, orderID string) error
}
