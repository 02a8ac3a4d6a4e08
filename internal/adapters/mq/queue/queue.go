// Package queue provides the bounded in-memory buffer decoupling transport
// concurrency from engine state. The ingest adapter enqueues; a single
// consumer loop drains.
package queue

import (
	"context"
	"sync"

	"github.com/marpol/driftwatch/internal/domain/model"
	"github.com/marpol/driftwatch/pkg/metrics"
)

// defaultCapacity bounds the queue when no option is given.
const defaultCapacity = 10000

// Update is the payload type flowing through the queue.
type Update = model.PositionUpdate

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an update. Returns false when the queue is full or
	// closed; the caller drops the report and moves on.
	Enqueue(ctx context.Context, u Update) bool

	// Dequeue returns the channel updates arrive on. The channel is
	// closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Update

	// Len returns the current number of queued updates.
	Len(ctx context.Context) int

	// Close shuts the queue down. No further enqueues succeed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	updates  chan Update
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.updates = make(chan Update, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds an update without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Update) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDrop("closed")
		return false
	}

	select {
	case q.updates <- u:
		metrics.UpdateQueueSize(len(q.updates))
		return true
	case <-ctx.Done():
		metrics.RecordQueueDrop("context_cancelled")
		return false
	default:
		metrics.RecordQueueDrop("full")
		return false
	}
}

// Dequeue returns the channel updates arrive on.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Update {
	return q.updates
}

// Len returns the current number of queued updates.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.updates)
	metrics.UpdateQueueSize(size)
	return size
}

// Close shuts down the queue. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.updates)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
