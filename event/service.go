package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

// Publisher delivers loyalty events to whatever consumes them. Delivery is
// fire-and-forget: callers have already committed the state change.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event) error
}

type Service interface {
	Create(ctx context.Context, event *models.Event) error
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventAsProcessed(ctx context.Context, eventID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, event *models.Event) error {
	return s.repo.Create(ctx, event)
}

// IsEventProcessed treats an unknown event as not yet processed.
func (s *service) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return event.Processed, nil
}

func (s *service) MarkEventAsProcessed(ctx context.Context, eventID string) error {
	return s.repo.MarkAsProcessed(ctx, eventID)
}

// New builds an unprocessed event with a fresh id.
func New(eventType enum.EventType, businessID, customerID, rewardID uint64) *models.Event {
	now := time.Now().UTC()
	return &models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		BusinessID: businessID,
		CustomerID: customerID,
		RewardID:   rewardID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
