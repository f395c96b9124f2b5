package loyalty

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/loyalty/models"
)

type processorFunc func(context.Context, *models.Event) error

func (f processorFunc) ProcessEvent(ctx context.Context, e *models.Event) error {
	return f(ctx, e)
}

func TestWorkerPool_ProcessesAllSubmitted(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	wp := NewWorkerPool(2, 4, 100, processorFunc(func(_ context.Context, e *models.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen[e.ID] = true
		return nil
	}), zap.NewNop())
	defer wp.Stop()

	for i := 0; i < 50; i++ {
		require.NoError(t, wp.Submit(context.Background(), &models.Event{ID: fmt.Sprintf("evt-%d", i)}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 50
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWorkerPool_QueueFullWhileRunning(t *testing.T) {
	var (
		mu        sync.Mutex
		processed int
		started   = make(chan struct{}, 1)
		release   = make(chan struct{})
	)
	wp := NewWorkerPool(1, 1, 2, processorFunc(func(context.Context, *models.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		mu.Lock()
		defer mu.Unlock()
		processed++
		return nil
	}), zap.NewNop())
	defer wp.Stop()

	require.NoError(t, wp.Submit(context.Background(), &models.Event{ID: "busy"}))
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("worker never picked up the first event")
	}

	// the worker is busy: two events fit in the queue and the dispatcher
	// holds at most one more
	accepted := 0
	var err error
	for i := 0; i < 10; i++ {
		if err = wp.Submit(context.Background(), &models.Event{ID: fmt.Sprintf("evt-%d", i)}); err != nil {
			break
		}
		accepted++
	}
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.GreaterOrEqual(t, accepted, 2)
	assert.LessOrEqual(t, accepted, 3)

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return processed == accepted+1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWorkerPool_SkipsStaleWorkerChannel(t *testing.T) {
	done := make(chan string, 1)
	d := NewDispatcher(1, 1, 4, processorFunc(func(_ context.Context, e *models.Event) error {
		done <- e.ID
		return nil
	}), zap.NewNop())
	// a channel registered by a worker that stopped before receiving
	d.WorkerPool <- make(chan WorkRequest)
	d.Run()
	defer d.Stop()

	d.jobQueue <- WorkRequest{Event: &models.Event{ID: "after-stale"}, Ctx: context.Background()}

	select {
	case id := <-done:
		assert.Equal(t, "after-stale", id)
	case <-time.After(3 * time.Second):
		t.Fatal("event was not delivered to the live worker")
	}
}

func TestDispatcher_AdjustWorkerPool(t *testing.T) {
	d := NewDispatcher(1, 3, 4, processorFunc(func(context.Context, *models.Event) error {
		return nil
	}), zap.NewNop())
	d.mu.Lock()
	d.addWorker()
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for _, w := range d.workers {
			w.Stop()
		}
	}()

	// nothing dispatches, so the backlog stays above the 75% threshold
	for i := 0; i < 4; i++ {
		d.jobQueue <- WorkRequest{Event: &models.Event{ID: fmt.Sprintf("evt-%d", i)}, Ctx: context.Background()}
	}

	d.adjustWorkerPool()
	assert.Equal(t, 2, d.WorkerCount())
	d.adjustWorkerPool()
	d.adjustWorkerPool()
	assert.Equal(t, 3, d.WorkerCount(), "never grows past max workers")

	for len(d.jobQueue) > 0 {
		<-d.jobQueue
	}

	d.adjustWorkerPool()
	assert.Equal(t, 2, d.WorkerCount())
	d.adjustWorkerPool()
	d.adjustWorkerPool()
	assert.Equal(t, 1, d.WorkerCount(), "never shrinks below min workers")
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	wp := NewWorkerPool(1, 1, 1, processorFunc(func(context.Context, *models.Event) error {
		return nil
	}), zap.NewNop())
	wp.Stop()
	wp.Stop()

	err := wp.Submit(context.Background(), &models.Event{ID: "late"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}
