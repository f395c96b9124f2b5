package notification

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, notification *models.SMSNotification) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status enum.NotificationStatus, sentAt *time.Time) error
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64, limit int) ([]*models.SMSNotification, error)
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

func (r *repository) Create(ctx context.Context, tx pgx.Tx, notification *models.SMSNotification) error {
	const query = `
	INSERT INTO sms_notifications (customer_id, business_id, phone, message, type, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`

	if err := driver.WithTx(r.conn, tx).QueryRow(ctx, query,
		notification.CustomerID,
		notification.BusinessID,
		notification.Phone,
		notification.Message,
		string(notification.Type),
		string(notification.Status),
	).Scan(&notification.ID, &notification.CreatedAt); err != nil {
		r.logger.Error("error creating sms notification", zap.Error(err))
		return apperr.Unexpected("failed to create sms notification", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status enum.NotificationStatus, sentAt *time.Time) error {
	const query = `UPDATE sms_notifications SET status = $2, sent_at = $3 WHERE id = $1`

	tag, err := driver.WithTx(r.conn, tx).Exec(ctx, query, id, string(status), sentAt)
	if err != nil {
		return apperr.Unexpected("failed to update sms notification", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("sms notification", id)
	}
	return nil
}

func (r *repository) ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64, limit int) ([]*models.SMSNotification, error) {
	const query = `
	SELECT id, customer_id, business_id, phone, message, type, status, sent_at, created_at
	FROM sms_notifications
	WHERE business_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2`

	rows, err := driver.WithTx(r.conn, tx).Query(ctx, query, businessID, limit)
	if err != nil {
		r.logger.Error("error listing sms notifications", zap.Error(err))
		return nil, apperr.Unexpected("failed to list sms notifications", err)
	}
	defer rows.Close()

	notifications := make([]*models.SMSNotification, 0, limit)
	for rows.Next() {
		var (
			n                        models.SMSNotification
			notificationType, status string
		)
		if err = rows.Scan(
			&n.ID,
			&n.CustomerID,
			&n.BusinessID,
			&n.Phone,
			&n.Message,
			&notificationType,
			&status,
			&n.SentAt,
			&n.CreatedAt,
		); err != nil {
			return nil, apperr.Unexpected("failed to scan sms notification", err)
		}
		n.Type = enum.NotificationType(notificationType)
		n.Status = enum.NotificationStatus(status)
		notifications = append(notifications, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, apperr.Unexpected("failed to list sms notifications", err)
	}

	return notifications, nil
}
