// Package mongo хранит заказы в коллекции MongoDB в виде плоских документов.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/document"
)

const (
	DefaultDatabase   = "vela_dry_wash"
	DefaultCollection = "orders"

	opTimeout      = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// Config описывает подключение к коллекции заказов.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// OrderStore: реализация domain.OrderStore поверх mongo-driver.
type OrderStore struct {
	cfg Config

	mu     sync.RWMutex
	client *mongo.Client
	orders *mongo.Collection
}

// NewOrderStore создаёт хранилище без подключения; подключение выполняет Connect.
func NewOrderStore(cfg Config) *OrderStore {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	return &OrderStore{cfg: cfg}
}

// Connect подключается к кластеру и проверяет его через ping.
// Учётные данные берутся из URI; без них подключение анонимное.
func (s *OrderStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URI).SetConnectTimeout(connectTimeout))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	s.client = client
	s.orders = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	return nil
}

func (s *OrderStore) collection() (*mongo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.orders == nil {
		return nil, domain.ErrSessionNotReady
	}
	return s.orders, nil
}

// naturalOrder сортирует по _id: ObjectID растёт вместе с моментом вставки.
var naturalOrder = bson.D{{Key: "_id", Value: 1}}

func (s *OrderStore) FindAll(ctx context.Context) ([]domain.Order, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(naturalOrder))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var docs []document.OrderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.ToOrder()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *OrderStore) InsertOne(ctx context.Context, order domain.Order) error {
	coll, err := s.collection()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := coll.InsertOne(ctx, document.FromOrder(order)); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) DeleteOne(ctx context.Context, id string) (bool, error) {
	coll, err := s.collection()
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *OrderStore) FindOne(ctx context.Context, id string) (domain.Order, error) {
	coll, err := s.collection()
	if err != nil {
		return domain.Order{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc document.OrderDocument
	err = coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetSort(naturalOrder)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("find order: %w", err)
	}
	return doc.ToOrder()
}

func (s *OrderStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return domain.ErrSessionNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

// Close отключает клиента. Повторный вызов безопасен.
func (s *OrderStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client, s.orders = nil, nil
	return err
}

var _ domain.OrderStore = (*OrderStore)(nil)
