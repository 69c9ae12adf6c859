package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/document"
)

const opTimeout = 5 * time.Second

type orderStore struct {
	store *Store
}

// NewOrderStore создаёт PostgreSQL-реализацию OrderStore.
// Таблица orders не имеет уникального индекса по id: порядок задаёт seq.
func NewOrderStore(store *Store) domain.OrderStore {
	return &orderStore{store: store}
}

// Connect проверяет, что база отвечает.
func (r *orderStore) Connect(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *orderStore) FindAll(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, customer_name, phone, created_at, items
		FROM orders
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *orderStore) InsertOne(ctx context.Context, order domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := document.FromOrder(order)
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	if _, err := r.store.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, phone, created_at, items)
		VALUES ($1, $2, $3, $4, $5)
	`, doc.ID, doc.CustomerName, doc.Phone, doc.CreatedAt, items); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// DeleteOne удаляет самую раннюю запись с указанным id.
func (r *orderStore) DeleteOne(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `
		DELETE FROM orders
		WHERE seq = (SELECT MIN(seq) FROM orders WHERE id = $1)
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete order rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *orderStore) FindOne(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, customer_name, phone, created_at, items
		FROM orders
		WHERE id = $1
		ORDER BY seq
		LIMIT 1
	`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderStore) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Close не закрывает пул: им владеет Store, он же обслуживает счётчик номеров.
func (r *orderStore) Close(context.Context) error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		doc   document.OrderDocument
		items []byte
	)
	if err := row.Scan(&doc.ID, &doc.CustomerName, &doc.Phone, &doc.CreatedAt, &items); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("scan order row: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &doc.Items); err != nil {
			return domain.Order{}, fmt.Errorf("unmarshal items of order %q: %w", doc.ID, err)
		}
	}
	return doc.ToOrder()
}

var _ domain.OrderStore = (*orderStore)(nil)
