// Package queue hands screenshots from the album scanner to the worker pool.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

const defaultQueueCapacity = 256

// Queue is a bounded FIFO of screenshots awaiting analysis.
type Queue interface {
	// Enqueue adds a screenshot without blocking.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, s model.Screenshot) bool

	// Put adds a screenshot, waiting for space until ctx is done.
	// Returns ErrStopped once the queue is closed.
	Put(ctx context.Context, s model.Screenshot) error

	// Dequeue returns the channel screenshots are delivered on.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan model.Screenshot

	Len(ctx context.Context) int

	// Close stops accepting screenshots. Queued ones are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	shots    chan model.Screenshot
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.shots = make(chan model.Screenshot, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Enqueue adds a screenshot if there is room.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s model.Screenshot) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.shots <- s:
		q.recordEnqueue()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Put adds a screenshot, blocking while the queue is full.
func (q *InMemoryQueue) Put(ctx context.Context, s model.Screenshot) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return ErrStopped
	}

	select {
	case q.shots <- s:
		q.recordEnqueue()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return fmt.Errorf("enqueue %s: %w", s.ID, ctx.Err())
	}
}

func (q *InMemoryQueue) recordEnqueue() {
	metrics.RecordQueueEnqueue()
	q.updateSize(len(q.shots))
}

func (q *InMemoryQueue) updateSize(size int) {
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan model.Screenshot {
	return q.shots
}

// Len returns the number of queued screenshots.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.shots)
	q.updateSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.shots)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
