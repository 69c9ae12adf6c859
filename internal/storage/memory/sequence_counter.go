package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
)

// sequenceCounterInMemory: счётчик номеров в памяти процесса.
type sequenceCounterInMemory struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequenceCounter возвращает счётчик, начинающий каждый scope с start.
// start: последнее уже выданное значение (обычно 0).
func NewSequenceCounter(start map[string]int64) domain.SequenceCounter {
	values := make(map[string]int64, len(start))
	for scope, v := range start {
		values[scope] = v
	}
	return &sequenceCounterInMemory{values: values}
}

func (c *sequenceCounterInMemory) Next(_ context.Context, scope string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[scope]++
	return c.values[scope], nil
}

var _ domain.SequenceCounter = (*sequenceCounterInMemory)(nil)
