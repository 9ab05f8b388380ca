// Package worker runs the action loop: a single goroutine that executes
// queued actions one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/elocompare/internal/adapters/mq/queue"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// Queue defines how the loop receives actions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Action
}

// Loop executes actions sequentially, so actions never race with each
// other.
type Loop struct {
	queue Queue
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop over q.
func NewLoop(q Queue, opts ...Option) *Loop {
	l := &Loop{
		queue:    q,
		name:     "action-loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named(l.name)
	return l
}

// Run processes actions until ctx is cancelled, Shutdown is called, or the
// queue is closed and drained.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	actions := l.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case a, ok := <-actions:
			if !ok {
				return
			}
			l.process(ctx, a)
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Shutdown stops the loop and waits for the running action to finish.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one action. A panicking action is logged and the loop goes on.
func (l *Loop) process(ctx context.Context, a queue.Action) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(ctx, "action panicked",
				logger.String("action", a.Name),
				logger.Any("panic", r),
			)
		}
		metrics.RecordActionLatency(a.Name, float64(time.Since(start).Milliseconds()))
	}()

	a.Run(ctx)
}
