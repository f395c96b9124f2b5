package models

import (
	"time"

	"goflare.io/loyalty/models/enum"
)

type SMSNotification struct {
	ID         uint64                  `json:"id"`
	CustomerID *uint64                 `json:"customer_id,omitempty"`
	BusinessID uint64                  `json:"business_id"`
	Phone      string                  `json:"phone"`
	Message    string                  `json:"message"`
	Type       enum.NotificationType   `json:"type"`
	Status     enum.NotificationStatus `json:"status"`
	SentAt     *time.Time              `json:"sent_at,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

func NewSMSNotification() *SMSNotification {
	return &SMSNotification{Status: enum.NotificationStatusPending}
}
