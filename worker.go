package loyalty

import (
	"context"

	"go.uber.org/zap"

	"goflare.io/loyalty/metrics"
	"goflare.io/loyalty/models"
)

// Processor handles one event taken off the queue.
type Processor interface {
	ProcessEvent(ctx context.Context, e *models.Event) error
}

type Worker struct {
	ID         int
	WorkerPool chan chan WorkRequest
	JobChannel chan WorkRequest
	quit       chan bool
	processor  Processor
	logger     *zap.Logger
}

type WorkRequest struct {
	Event *models.Event
	Ctx   context.Context
}

func NewWorker(id int, workerPool chan chan WorkRequest, processor Processor, logger *zap.Logger) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan WorkRequest),
		quit:       make(chan bool),
		processor:  processor,
		logger:     logger,
	}
}

func (w Worker) Start() {
	go func() {
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			}

			select {
			case job := <-w.JobChannel:
				w.handle(job)
			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) handle(job WorkRequest) {
	eventType := string(job.Event.Type)
	w.logger.Debug("Processing event",
		zap.Int("worker_id", w.ID),
		zap.String("event_type", eventType),
		zap.String("event_id", job.Event.ID))

	if err := w.processor.ProcessEvent(job.Ctx, job.Event); err != nil {
		metrics.EventsProcessed.WithLabelValues(eventType, "error").Inc()
		w.logger.Error("Failed to process event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("event_id", job.Event.ID))
		return
	}

	metrics.EventsProcessed.WithLabelValues(eventType, "ok").Inc()
	w.logger.Info("Event processed",
		zap.String("event_type", eventType),
		zap.String("event_id", job.Event.ID))
}

func (w Worker) Stop() {
	close(w.quit)
}
