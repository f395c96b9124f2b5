package notification

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/metrics"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	maxMessageLength = 480
)

type SendRequest struct {
	BusinessID uint64                `json:"business_id"`
	CustomerID *uint64               `json:"customer_id"`
	Phone      string                `json:"phone"`
	Message    string                `json:"message"`
	Type       enum.NotificationType `json:"type"`
}

type Service interface {
	Send(ctx context.Context, req SendRequest) (*models.SMSNotification, error)
	ListByBusiness(ctx context.Context, businessID uint64, limit int) ([]*models.SMSNotification, error)
}

type service struct {
	repo               Repository
	sender             Sender
	transactionManager driver.Transactor
	logger             *zap.Logger
}

func NewService(repo Repository, sender Sender, tm driver.Transactor, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		sender:             sender,
		transactionManager: tm,
		logger:             logger,
	}
}

// Send records the message as pending, hands it to the sender and records
// the outcome. A delivery failure is reflected in the returned row's status,
// not in the error.
func (s *service) Send(ctx context.Context, req SendRequest) (*models.SMSNotification, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	switch {
	case req.Phone == "":
		return nil, apperr.InvalidInput("phone is required")
	case req.Message == "":
		return nil, apperr.InvalidInput("message is required")
	case len(req.Message) > maxMessageLength:
		return nil, apperr.InvalidInput("message must be at most %d characters", maxMessageLength)
	case !req.Type.Valid():
		return nil, apperr.InvalidInput("unknown notification type %q", req.Type)
	}

	notification := models.NewSMSNotification()
	notification.BusinessID = req.BusinessID
	notification.CustomerID = req.CustomerID
	notification.Phone = req.Phone
	notification.Message = req.Message
	notification.Type = req.Type

	if err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, notification)
	}); err != nil {
		return nil, err
	}

	var sentAt *time.Time
	status := enum.NotificationStatusSent
	if err := s.sender.Send(ctx, notification.Phone, notification.Message); err != nil {
		s.logger.Error("failed to send sms",
			zap.Error(err),
			zap.Uint64("notification_id", notification.ID),
			zap.Uint64("business_id", notification.BusinessID),
		)
		status = enum.NotificationStatusFailed
	} else {
		now := time.Now().UTC()
		sentAt = &now
	}

	if err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.UpdateStatus(ctx, tx, notification.ID, status, sentAt)
	}); err != nil {
		return nil, err
	}
	metrics.SMSSent.WithLabelValues(string(status)).Inc()

	notification.Status = status
	notification.SentAt = sentAt
	return notification, nil
}

func (s *service) ListByBusiness(ctx context.Context, businessID uint64, limit int) ([]*models.SMSNotification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var notifications []*models.SMSNotification
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		notifications, err = s.repo.ListByBusiness(ctx, tx, businessID, limit)
		return err
	})
	return notifications, err
}
