package loyalty

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	minTickerInterval = 5 * time.Second
	maxTickerInterval = 30 * time.Second
	handoffTimeout    = time.Second
)

type Dispatcher struct {
	WorkerPool chan chan WorkRequest
	minWorkers int
	maxWorkers int
	jobQueue   chan WorkRequest
	processor  Processor
	logger     *zap.Logger
	workers    []Worker
	nextID     int
	stop       chan bool
	done       chan struct{}
	mu         sync.Mutex
}

func NewDispatcher(minWorkers, maxWorkers, jobQueueSize int, processor Processor, logger *zap.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if minWorkers < 1 || minWorkers > maxWorkers {
		minWorkers = maxWorkers
	}
	pool := make(chan chan WorkRequest, maxWorkers)
	return &Dispatcher{
		WorkerPool: pool,
		minWorkers: minWorkers,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan WorkRequest, jobQueueSize),
		processor:  processor,
		logger:     logger,
		stop:       make(chan bool),
		done:       make(chan struct{}),
	}
}

func (d *Dispatcher) Run() {
	d.mu.Lock()
	for i := 0; i < d.minWorkers; i++ {
		d.addWorker()
	}
	d.mu.Unlock()

	go d.dispatch()
}

// addWorker must be called with d.mu held.
func (d *Dispatcher) addWorker() Worker {
	d.nextID++
	worker := NewWorker(d.nextID, d.WorkerPool, d.processor, d.logger)
	worker.Start()
	d.workers = append(d.workers, worker)
	return worker
}

func (d *Dispatcher) dispatch() {
	defer close(d.done)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case job := <-d.jobQueue:
			if !d.handoff(job, ticker) {
				return
			}
		case <-ticker.C:
			d.tick(ticker)
		case <-d.stop:
			return
		}
	}
}

// handoff blocks until an idle worker takes job. Only one job is held outside
// jobQueue at a time, so a backlog fills the queue and is seen by Submit and
// adjustWorkerPool. It returns false once the dispatcher is stopped.
func (d *Dispatcher) handoff(job WorkRequest, ticker *time.Ticker) bool {
	for {
		select {
		case jobChannel := <-d.WorkerPool:
			select {
			case jobChannel <- job:
				return true
			case <-time.After(handoffTimeout):
				// left behind by a stopped worker; try the next one
			case <-job.Ctx.Done():
				d.logger.Warn("Job context canceled before processing",
					zap.Error(job.Ctx.Err()),
					zap.String("event_type", string(job.Event.Type)),
					zap.String("event_id", job.Event.ID))
				return true
			}
		case <-ticker.C:
			d.tick(ticker)
		case <-job.Ctx.Done():
			d.logger.Warn("Job context canceled while waiting for available worker",
				zap.Error(job.Ctx.Err()),
				zap.String("event_type", string(job.Event.Type)),
				zap.String("event_id", job.Event.ID))
			return true
		case <-d.stop:
			d.logger.Warn("Dispatcher stopped before job was handed off",
				zap.String("event_id", job.Event.ID))
			return false
		}
	}
}

func (d *Dispatcher) tick(ticker *time.Ticker) {
	d.adjustWorkerPool()

	jobQueueLength := len(d.jobQueue)
	if jobQueueLength > 50 {
		ticker.Reset(minTickerInterval)
	} else if jobQueueLength > 20 {
		ticker.Reset(10 * time.Second)
	} else {
		ticker.Reset(maxTickerInterval)
	}
}

func (d *Dispatcher) adjustWorkerPool() {
	d.mu.Lock()
	defer d.mu.Unlock()

	queued := len(d.jobQueue)
	threshold := int(float64(cap(d.jobQueue)) * 0.75)
	currentWorkerCount := len(d.workers)

	if queued > threshold && currentWorkerCount < d.maxWorkers {
		newWorker := d.addWorker()
		d.logger.Info("Added new worker", zap.Int("worker_id", newWorker.ID))
	}

	if queued == 0 && currentWorkerCount > d.minWorkers {
		worker := d.workers[len(d.workers)-1]
		worker.Stop()
		d.workers = d.workers[:len(d.workers)-1]
		d.logger.Info("Removed worker", zap.Int("worker_id", worker.ID))
	}

	d.cleanupStoppedWorkers()

	if queued > 0 && len(d.workers) == 0 {
		d.addWorker()
		d.logger.Info("Added a new worker because job queue is not empty but no workers are available")
	}
}

func (d *Dispatcher) cleanupStoppedWorkers() {
	var activeWorkers []Worker
	for _, worker := range d.workers {
		select {
		case <-worker.quit:
			d.logger.Info("Cleaned up stopped worker", zap.Int("worker_id", worker.ID))
		default:
			activeWorkers = append(activeWorkers, worker)
		}
	}
	d.workers = activeWorkers
}

func (d *Dispatcher) WorkerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done

	d.mu.Lock()
	for _, worker := range d.workers {
		worker.Stop()
	}
	d.workers = nil
	d.mu.Unlock()
}
