package delivery

import (
	"context"
	"sync"

	"github.com/jywlabs/scaffold/internal/metrics"
)

// Queue is a FIFO of intents with many producers and one consumer.
type Queue interface {
	// Push appends an intent. It does not block on the consumer.
	Push(ctx context.Context, in Intent) error
	// Drain removes and returns every queued intent in push order.
	Drain(ctx context.Context) ([]Intent, error)
}

// MemoryQueue is an unbounded in-process Queue. Its backlog is exported as
// the delivery queue depth gauge.
type MemoryQueue struct {
	mu    sync.Mutex
	items []Intent
}

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Push appends in to the queue.
func (q *MemoryQueue) Push(ctx context.Context, in Intent) error {
	q.mu.Lock()
	q.items = append(q.items, in)
	q.mu.Unlock()
	metrics.QueueDepth.Inc()
	return nil
}

// Drain takes the whole backlog in one step.
func (q *MemoryQueue) Drain(ctx context.Context) ([]Intent, error) {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	metrics.QueueDepth.Sub(float64(len(items)))
	return items, nil
}
