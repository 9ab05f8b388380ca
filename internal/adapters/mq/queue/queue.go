// Package queue holds pending user actions until the action loop runs them.
package queue

import (
	"context"
	"sync"

	"github.com/okian/elocompare/pkg/metrics"
)

const defaultCapacity = 64

// Action is one unit of work for the action loop.
type Action struct {
	// Name labels the action in logs and metrics.
	Name string
	Run  func(ctx context.Context)
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an action. It returns false when the queue is full or
	// closed.
	Enqueue(ctx context.Context, a Action) bool

	// Dequeue returns a channel that receives actions in enqueue order. The
	// channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Action

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	actions  chan Action
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.actions = make(chan Action, q.capacity)
	metrics.UpdateActionQueueSize(0)
	return q
}

// Enqueue adds an action without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Action) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || a.Run == nil {
		metrics.RecordActionRejected()
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordActionRejected()
		return false
	default:
	}

	select {
	case q.actions <- a:
		metrics.UpdateActionQueueSize(len(q.actions))
		return true
	default:
		metrics.RecordActionRejected()
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Action {
	out := make(chan Action)
	go func() {
		defer close(out)
		for a := range q.actions {
			select {
			case out <- a:
				metrics.UpdateActionQueueSize(len(q.actions))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending actions.
func (q *InMemoryQueue) Len() int {
	return len(q.actions)
}

// Close stops accepting actions. Pending actions are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.actions)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
