package gateway_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/memory"
)

var errTransport = errors.New("network is unreachable")

// flakyStore оборачивает in-memory хранилище и умеет имитировать сбои транспорта.
type flakyStore struct {
	domain.OrderStore

	connects   atomic.Int32
	connectErr error

	mu          sync.Mutex
	failFind    bool
	failGet     bool
	failInsert  bool
	failDeletes map[string]bool
	closed      bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		OrderStore:  memory.NewOrderStore(),
		failDeletes: map[string]bool{},
	}
}

func (s *flakyStore) Connect(ctx context.Context) error {
	s.connects.Add(1)
	if s.connectErr != nil {
		return s.connectErr
	}
	return s.OrderStore.Connect(ctx)
}

func (s *flakyStore) FindAll(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	fail := s.failFind
	s.mu.Unlock()
	if fail {
		return nil, errTransport
	}
	return s.OrderStore.FindAll(ctx)
}

func (s *flakyStore) FindOne(ctx context.Context, id string) (domain.Order, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return domain.Order{}, errTransport
	}
	return s.OrderStore.FindOne(ctx, id)
}

func (s *flakyStore) InsertOne(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	fail := s.failInsert
	s.mu.Unlock()
	if fail {
		return errTransport
	}
	return s.OrderStore.InsertOne(ctx, order)
}

func (s *flakyStore) DeleteOne(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	fail := s.failDeletes[id]
	s.mu.Unlock()
	if fail {
		return false, errTransport
	}
	return s.OrderStore.DeleteOne(ctx, id)
}

func (s *flakyStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.OrderStore.Close(ctx)
}
