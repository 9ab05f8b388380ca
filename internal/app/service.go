package app

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/elocompare/internal/adapters/mq/queue"
	"github.com/okian/elocompare/internal/adapters/mq/worker"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/pkg/logger"
)

const defaultQueueSize = 64

// Service runs controller actions on a single action loop. History fetches
// leave the loop and come back as a render action once both have resolved,
// so a view started later may render earlier; the last render to run wins.
type Service struct {
	mu sync.Mutex

	ctrl      *Controller
	queueSize int

	queue *queue.InMemoryQueue
	loop  *worker.Loop

	started bool
	logger  logger.Logger
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithQueueSize sets how many actions may wait on the loop.
func WithQueueSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service around ctrl.
func NewService(ctrl *Controller, opts ...ServiceOption) *Service {
	s := &Service{
		ctrl:      ctrl,
		queueSize: defaultQueueSize,
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts the loop and loads the roster on it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.loop = worker.NewLoop(s.queue, worker.WithLogger(s.logger))
	// The loop outlives the request that started it.
	go s.loop.Run(context.WithoutCancel(ctx))
	s.started = true
	s.mu.Unlock()

	var loaded int
	if err := s.do(ctx, "init", func(lctx context.Context) { loaded = s.ctrl.Init(lctx) }); err != nil {
		return err
	}
	s.logger.Info(ctx, "service started",
		logger.Int("queue_size", s.queueSize),
		logger.Int("roster", loaded),
	)
	return nil
}

// Stop closes the queue and waits for queued actions to finish.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	q, loop := s.queue, s.loop
	s.mu.Unlock()

	if err := q.Close(); err != nil {
		s.logger.Error(ctx, "error closing action queue", logger.Error(err))
	}
	select {
	case <-loop.Done():
		return nil
	case <-ctx.Done():
		return loop.Shutdown(ctx)
	}
}

// Select sets a slot on the loop.
func (s *Service) Select(ctx context.Context, slot model.Slot, id string) error {
	var err error
	if qerr := s.do(ctx, "select", func(lctx context.Context) { err = s.ctrl.Select(lctx, slot, id) }); qerr != nil {
		return qerr
	}
	return err
}

// Clear clears the chart and both slots on the loop.
func (s *Service) Clear(ctx context.Context) error {
	return s.do(ctx, "clear", s.ctrl.Clear)
}

// State reads a snapshot on the loop.
func (s *Service) State(ctx context.Context) (State, error) {
	var st State
	err := s.do(ctx, "state", func(context.Context) { st = s.ctrl.State() })
	return st, err
}

type viewResult struct {
	out Outcome
	err error
}

// View checks preconditions on the loop, fetches off the loop, then renders
// on the loop. It waits for the render; a caller that gives up does not
// cancel the fetches.
func (s *Service) View(ctx context.Context) (Outcome, error) {
	reply := make(chan viewResult, 1)

	err := s.post(ctx, "view", func(lctx context.Context) {
		req, out, err := s.ctrl.BeginView(lctx)
		if err != nil {
			reply <- viewResult{out, err}
			return
		}
		go func() {
			results := s.ctrl.FetchAll(lctx, req)
			err := s.post(lctx, "render", func(rctx context.Context) {
				out, err := s.ctrl.FinishView(rctx, req, results)
				reply <- viewResult{out, err}
			})
			if err != nil {
				s.logger.Error(lctx, "render dropped", logger.Error(err))
				reply <- viewResult{err: err}
			}
		}()
	})
	if err != nil {
		return Outcome{}, err
	}

	select {
	case r := <-reply:
		return r.out, r.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// do runs fn on the loop and waits for it.
func (s *Service) do(ctx context.Context, name string, fn func(context.Context)) error {
	done := make(chan struct{})
	err := s.post(ctx, name, func(lctx context.Context) {
		defer close(done)
		fn(lctx)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting.
func (s *Service) post(ctx context.Context, name string, fn func(context.Context)) error {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()

	if q == nil || q.IsClosed() {
		return ErrStopped
	}
	if !q.Enqueue(ctx, queue.Action{Name: name, Run: fn}) {
		if q.IsClosed() {
			return ErrStopped
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
	return nil
}

// IsRejected reports whether err means the loop refused the action.
func IsRejected(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrStopped)
}
