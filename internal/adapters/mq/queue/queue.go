// Package queue carries game records from a producer to the single feature
// consumer, in order.
package queue

import (
	"context"
	"sync"

	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/pkg/metrics"
)

// Default queue configuration constants.
const defaultQueueCapacity = 1024

// Queue is a bounded FIFO of games. Put blocks while the queue is full
// instead of dropping, since every game must reach the consumer.
type Queue interface {
	// Put appends g, blocking until there is room, ctx ends or the queue closes.
	Put(ctx context.Context, g model.GameRecord) error

	// Games returns the receive side. It is closed after Close once drained.
	Games() <-chan model.GameRecord

	// Len returns the current number of queued games.
	Len() int

	// Close stops accepting games. Queued games remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// GameQueue implements Queue over a buffered channel. It expects one
// producer; with several producers the interleaving is undefined.
type GameQueue struct {
	games    chan model.GameRecord
	capacity int

	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	doneOnce sync.Once
}

// NewGameQueue creates a new queue with configuration options.
func NewGameQueue(opts ...Option) *GameQueue {
	q := &GameQueue{
		capacity: defaultQueueCapacity,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.games = make(chan model.GameRecord, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)
	return q
}

// Put implements Queue.
func (q *GameQueue) Put(ctx context.Context, g model.GameRecord) error { //nolint:gocritic // hugeParam: records travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.games <- g:
		metrics.UpdateQueueDepth(len(q.games))
		return nil
	case <-ctx.Done():
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	}
}

// Games implements Queue.
func (q *GameQueue) Games() <-chan model.GameRecord {
	return q.games
}

// Len implements Queue.
func (q *GameQueue) Len() int {
	n := len(q.games)
	metrics.UpdateQueueDepth(n)
	return n
}

// Capacity returns the queue bound.
func (q *GameQueue) Capacity() int { return q.capacity }

// Close implements Queue.
func (q *GameQueue) Close() error {
	// Wake producers blocked in Put before taking the write lock they hold
	// in read mode.
	q.doneOnce.Do(func() { close(q.done) })

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.games)
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *GameQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
