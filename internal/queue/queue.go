// Package queue implements the in-process worker pool that dispatches
// pending tasks to the director. It bounds parallel agent executions,
// delivers each task at least once, and guarantees at most one
// in-flight execution per task id, the invariant the decision core
// assumes but does not itself enforce.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/director (callers inject a Processor)
package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
)

// defaultWorkers bounds parallel agent executions when the caller does
// not configure a pool size.
const defaultWorkers = 3

// defaultCapacity is the enqueue buffer; Enqueue blocks once full.
const defaultCapacity = 64

// Processor handles one dequeued task. Processors must be idempotent:
// delivery is at-least-once and a task interrupted mid-flight may be
// re-enqueued by the caller.
type Processor interface {
	ProcessTask(ctx context.Context, taskID string) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, taskID string) error

// ProcessTask calls the wrapped function.
func (f ProcessorFunc) ProcessTask(ctx context.Context, taskID string) error {
	return f(ctx, taskID)
}

// Queue is a bounded worker pool over task ids.
type Queue struct {
	proc    Processor
	workers int
	log     zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	stopped  bool

	tasks chan string
	group *errgroup.Group
	stop  context.CancelFunc
}

// Option configures a Queue.
type Option func(*Queue)

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithLogger sets the queue's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(q *Queue) { q.log = log }
}

// New creates a queue that hands tasks to proc.
func New(proc Processor, opts ...Option) *Queue {
	q := &Queue{
		proc:     proc,
		workers:  defaultWorkers,
		log:      zerolog.Nop(),
		inflight: make(map[string]bool),
		tasks:    make(chan string, defaultCapacity),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker pool. Workers run until Stop is called or
// the parent context is cancelled.
func (q *Queue) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	q.stop = cancel

	group, ctx := errgroup.WithContext(ctx)
	q.group = group

	for i := 0; i < q.workers; i++ {
		group.Go(func() error {
			return q.worker(ctx)
		})
	}

	q.log.Info().Int("workers", q.workers).Msg("queue started")
}

func (q *Queue) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-q.tasks:
			if !ok {
				return nil
			}
			q.process(ctx, id)
		}
	}
}

func (q *Queue) process(ctx context.Context, id string) {
	defer func() {
		q.mu.Lock()
		delete(q.inflight, id)
		q.mu.Unlock()
	}()

	if err := q.proc.ProcessTask(ctx, id); err != nil {
		q.log.Error().Err(err).Str("task_id", id).Msg("task processing failed")
		return
	}
	q.log.Debug().Str("task_id", id).Msg("task processed")
}

// Enqueue admits one task id. A task already in flight is refused with
// ErrTaskInFlight; a stopped queue refuses everything with
// ErrQueueStopped.
func (q *Queue) Enqueue(taskID string) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return errors.Wrapf(errors.ErrQueueStopped, "task %s", taskID)
	}
	if q.inflight[taskID] {
		q.mu.Unlock()
		return errors.Wrapf(errors.ErrTaskInFlight, "task %s", taskID)
	}
	q.inflight[taskID] = true
	q.mu.Unlock()

	q.tasks <- taskID
	return nil
}

// EnqueueBatch admits every task in the batch, stopping at the first
// refusal.
func (q *Queue) EnqueueBatch(tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := q.Enqueue(t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts the workers and waits for in-flight processors to return.
// Buffered tasks that never started are dropped; callers re-enqueue
// pending work on restart. Enqueue fails afterwards.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	// Cancel rather than close: a late Enqueue racing Stop lands in the
	// buffer harmlessly instead of panicking on a closed channel.
	if q.stop != nil {
		q.stop()
	}
	if q.group != nil {
		_ = q.group.Wait()
	}
	q.log.Info().Msg("queue stopped")
}

// InFlight reports how many tasks are admitted but not yet finished.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}
