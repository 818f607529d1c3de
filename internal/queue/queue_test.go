package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/domain"
	"github.com/hiveworks/hive/internal/errors"
)

// recorder counts processed tasks and can hold them open.
type recorder struct {
	mu        sync.Mutex
	processed []string
	hold      chan struct{}
	done      chan string
}

func newRecorder() *recorder {
	return &recorder{done: make(chan string, 64)}
}

func (r *recorder) ProcessTask(_ context.Context, taskID string) error {
	if r.hold != nil {
		<-r.hold
	}
	r.mu.Lock()
	r.processed = append(r.processed, taskID)
	r.mu.Unlock()
	r.done <- taskID
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.processed)
}

func waitFor(t *testing.T, r *recorder, n int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-deadline:
			t.Fatalf("timed out waiting for %d tasks, got %d", n, r.count())
		}
	}
}

func TestQueueProcessesEnqueuedTasks(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	q := New(rec, WithWorkers(2))
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("task-20260830-00000001"))
	require.NoError(t, q.Enqueue("task-20260830-00000002"))
	require.NoError(t, q.Enqueue("task-20260830-00000003"))

	waitFor(t, rec, 3)
	assert.Equal(t, 3, rec.count())
	assert.Zero(t, q.InFlight())
}

func TestEnqueueBatch(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	q := New(rec)
	q.Start(context.Background())
	defer q.Stop()

	tasks := []*domain.Task{
		{ID: "task-20260830-0000000a"},
		{ID: "task-20260830-0000000b"},
	}
	require.NoError(t, q.EnqueueBatch(tasks))
	waitFor(t, rec, 2)
}

func TestEnqueueInFlightDedup(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	rec.hold = make(chan struct{})
	q := New(rec, WithWorkers(1))
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("task-20260830-000000aa"))

	err := q.Enqueue("task-20260830-000000aa")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTaskInFlight)

	close(rec.hold)
	waitFor(t, rec, 1)

	// Finished tasks may be re-delivered.
	require.NoError(t, q.Enqueue("task-20260830-000000aa"))
	waitFor(t, rec, 1)
}

func TestEnqueueAfterStop(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	q := New(rec)
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue("task-20260830-000000ff")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrQueueStopped)
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	q := New(newRecorder())
	q.Start(context.Background())
	q.Stop()
	q.Stop()
}

func TestProcessorErrorDoesNotStopWorkers(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	var calls int
	var mu sync.Mutex
	proc := ProcessorFunc(func(ctx context.Context, taskID string) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			rec.done <- taskID
			return context.DeadlineExceeded
		}
		return rec.ProcessTask(ctx, taskID)
	})

	q := New(proc, WithWorkers(1))
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("task-20260830-00000e01"))
	require.NoError(t, q.Enqueue("task-20260830-00000e02"))
	waitFor(t, rec, 2)
	assert.Equal(t, 1, rec.count())
}
