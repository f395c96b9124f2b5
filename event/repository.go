package event

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	MarkAsProcessed(ctx context.Context, id string) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

// Create stores the event once; a redelivered event keeps its first row.
func (r *repository) Create(ctx context.Context, event *models.Event) error {
	const query = `
	INSERT INTO loyalty_events (id, type, business_id, customer_id, reward_id, processed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, $7, $7)
	ON CONFLICT (id) DO NOTHING`

	if _, err := r.conn.Exec(ctx, query,
		event.ID,
		string(event.Type),
		event.BusinessID,
		event.CustomerID,
		event.RewardID,
		event.Processed,
		event.CreatedAt,
	); err != nil {
		r.logger.Error("error creating event", zap.Error(err), zap.String("event_id", event.ID))
		return apperr.Unexpected("failed to create event", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `
	SELECT id, type, business_id, customer_id, COALESCE(reward_id, 0), processed, created_at, updated_at
	FROM loyalty_events WHERE id = $1`

	var (
		event     models.Event
		eventType string
	)
	if err := r.conn.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&eventType,
		&event.BusinessID,
		&event.CustomerID,
		&event.RewardID,
		&event.Processed,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event", id)
		}
		return nil, apperr.Unexpected("failed to get event", err)
	}
	event.Type = enum.EventType(eventType)

	return &event, nil
}

func (r *repository) MarkAsProcessed(ctx context.Context, id string) error {
	const query = `UPDATE loyalty_events SET processed = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := r.conn.Exec(ctx, query, id)
	if err != nil {
		return apperr.Unexpected("failed to mark event as processed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event", id)
	}
	return nil
}
