package loyalty

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"goflare.io/loyalty/models"
)

var (
	ErrQueueFull  = errors.New("event queue is full")
	ErrPoolClosed = errors.New("worker pool is stopped")
)

// WorkerPool queues events for asynchronous processing.
type WorkerPool struct {
	dispatcher *Dispatcher
	logger     *zap.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewWorkerPool(minWorkers, maxWorkers, queueSize int, processor Processor, logger *zap.Logger) *WorkerPool {
	dispatcher := NewDispatcher(minWorkers, maxWorkers, queueSize, processor, logger)
	dispatcher.Run()
	return &WorkerPool{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit enqueues e without blocking.
func (wp *WorkerPool) Submit(ctx context.Context, e *models.Event) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return ErrPoolClosed
	}

	select {
	case wp.dispatcher.jobQueue <- WorkRequest{Event: e, Ctx: ctx}:
		return nil
	default:
		wp.logger.Error("Event queue is full", zap.String("event_id", e.ID))
		return ErrQueueFull
	}
}

func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	wp.mu.Unlock()

	wp.dispatcher.Stop()
}
