package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

type sequenceCounter struct {
	store *Store
}

// NewSequenceCounter возвращает счётчик номеров заказов на таблице order_sequences.
func NewSequenceCounter(store *Store) domain.SequenceCounter {
	return &sequenceCounter{store: store}
}

// Next атомарно увеличивает значение scope и возвращает новое.
func (c *sequenceCounter) Next(ctx context.Context, scope string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var value int64
	if err := c.store.db.QueryRowContext(ctx, `
		INSERT INTO order_sequences (scope, value, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (scope) DO UPDATE
		SET value = order_sequences.value + 1, updated_at = NOW()
		RETURNING value
	`, scope).Scan(&value); err != nil {
		return 0, fmt.Errorf("next order sequence for %q: %w", scope, err)
	}
	return value, nil
}

var _ domain.SequenceCounter = (*sequenceCounter)(nil)
