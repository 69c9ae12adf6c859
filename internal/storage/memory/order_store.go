package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// orderStoreInMemory: простая in-memory коллекция заказов.
// Как и коллекция без уникального индекса, допускает дубликаты ID.
type orderStoreInMemory struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrderStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewOrderStore() domain.OrderStore {
	return &orderStoreInMemory{}
}

// Connect ничего не делает: сессия in-memory хранилищу не нужна.
func (s *orderStoreInMemory) Connect(context.Context) error {
	return nil
}

// FindAll возвращает заказы в порядке вставки.
func (s *orderStoreInMemory) FindAll(context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, order.Clone())
	}
	return result, nil
}

// InsertOne добавляет заказ в конец коллекции. ID позиций отбрасываются, как в документе.
func (s *orderStoreInMemory) InsertOne(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	s.orders = append(s.orders, order.WithoutItemIDs())
	return nil
}

// DeleteOne удаляет первый заказ с указанным ID.
func (s *orderStoreInMemory) DeleteOne(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, order := range s.orders {
		if order.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// FindOne возвращает первый заказ с указанным ID или ErrOrderNotFound.
func (s *orderStoreInMemory) FindOne(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, order := range s.orders {
		if order.ID == id {
			return order.Clone(), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (s *orderStoreInMemory) Ping(context.Context) error {
	return nil
}

func (s *orderStoreInMemory) Close(context.Context) error {
	return nil
}

var _ domain.OrderStore = (*orderStoreInMemory)(nil)
