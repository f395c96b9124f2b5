package models

import (
	"time"

	"goflare.io/loyalty/models/enum"
)

// Event is a loyalty domain event published after a committed state change.
type Event struct {
	ID         string         `json:"id"`
	Type       enum.EventType `json:"type"`
	BusinessID uint64         `json:"business_id"`
	CustomerID uint64         `json:"customer_id"`
	RewardID   uint64         `json:"reward_id,omitempty"`
	Processed  bool           `json:"processed"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
