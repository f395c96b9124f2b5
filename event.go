package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/loyalty/event"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

const subjectPrefix = "loyalty.event."

type EventHandler func(context.Context, *models.Event) error

var _ event.Publisher = (*EventManager)(nil)

// EventManager records loyalty events, fans them out over NATS and routes
// delivered events to their handlers. Without a NATS connection events go
// straight to the worker pool.
type EventManager struct {
	natsConn *nats.Conn
	events   event.Service
	handlers map[enum.EventType]EventHandler
	logger   *zap.Logger

	mu         sync.RWMutex
	workerPool *WorkerPool
}

func NewEventManager(natsConn *nats.Conn, events event.Service, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		events:   events,
		handlers: make(map[enum.EventType]EventHandler),
		logger:   logger,
	}
}

func (em *EventManager) RegisterHandler(eventType enum.EventType, handler EventHandler) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.handlers[eventType] = handler
}

func (em *EventManager) GetHandler(eventType enum.EventType) (EventHandler, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	handler, exists := em.handlers[eventType]
	return handler, exists
}

func subject(eventType enum.EventType) string {
	return subjectPrefix + string(eventType)
}

func (em *EventManager) connected() bool {
	return em.natsConn != nil && em.natsConn.IsConnected()
}

// Publish stores event and hands it on for delivery.
func (em *EventManager) Publish(ctx context.Context, e *models.Event) error {
	if err := em.events.Create(ctx, e); err != nil {
		em.logger.Error("Failed to create event", zap.Error(err), zap.String("event_id", e.ID))
		return err
	}

	if em.connected() {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		if err = em.natsConn.Publish(subject(e.Type), data); err == nil {
			return nil
		}
		em.logger.Warn("Failed to publish event to NATS, submitting locally",
			zap.Error(err), zap.String("event_id", e.ID))
	}

	em.mu.RLock()
	wp := em.workerPool
	em.mu.RUnlock()
	if wp == nil {
		return fmt.Errorf("no delivery path for event %s", e.ID)
	}
	return wp.Submit(context.WithoutCancel(ctx), e)
}

// SubscribeToEvents routes every loyalty event to wp. wp also becomes the
// fallback used by Publish when NATS is unavailable.
func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	em.mu.Lock()
	em.workerPool = wp
	em.mu.Unlock()

	if em.natsConn == nil {
		em.logger.Warn("NATS is not configured, events are processed in-process only")
		return nil
	}

	_, err := em.natsConn.Subscribe(subjectPrefix+">", func(msg *nats.Msg) {
		var e models.Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.Error(err))
			return
		}

		if err := wp.Submit(context.Background(), &e); err != nil {
			em.logger.Error("Failed to submit event", zap.Error(err), zap.String("event_id", e.ID))
		}
	})

	return err
}

// ProcessEvent runs the handler for e once. Events already marked processed
// are skipped, so redelivery is harmless.
func (em *EventManager) ProcessEvent(ctx context.Context, e *models.Event) error {
	processed, err := em.events.IsEventProcessed(ctx, e.ID)
	if err != nil {
		return err
	}
	if processed {
		em.logger.Info("Event is already processed", zap.String("event_id", e.ID))
		return nil
	}

	handler, exists := em.GetHandler(e.Type)
	if !exists {
		return fmt.Errorf("no handler registered for event type: %s", e.Type)
	}

	if err = handler(ctx, e); err != nil {
		return err
	}

	if err = em.events.MarkEventAsProcessed(ctx, e.ID); err != nil {
		em.logger.Error("Failed to mark event as processed", zap.Error(err))
		return err
	}

	return nil
}
