package models

import (
	"time"
)

// Customer 代表商家的會員
// Customer represents a member of a business's loyalty program
type Customer struct {
	ID              uint64     `json:"id"`
	BusinessID      uint64     `json:"business_id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Visits          int32      `json:"visits"`
	RewardsEarned   int32      `json:"rewards_earned"`
	RewardsRedeemed int32      `json:"rewards_redeemed"`
	TotalSpent      int64      `json:"total_spent"`
	LastVisit       *time.Time `json:"last_visit,omitempty"`
	SMSOptIn        bool       `json:"sms_opt_in"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PartialCustomer holds the profile fields a client may change. Loyalty
// counters are managed by check-in and redemption only.
type PartialCustomer struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Notes    *string `json:"notes"`
	SMSOptIn *bool   `json:"sms_opt_in"`
}

// CustomerWithProgress is the list view of a customer with derived progress fields.
type CustomerWithProgress struct {
	Customer
	ProgressPercentage float64 `json:"progress_percentage"`
	HasAvailableReward bool    `json:"has_available_reward"`
	AverageSpent       float64 `json:"average_spent"`
}

func NewCustomer() *Customer {
	return &Customer{SMSOptIn: true}
}

// Apply copies the non-nil fields of p onto c.
func (c *Customer) Apply(p *PartialCustomer) {
	if p == nil {
		return
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.SMSOptIn != nil {
		c.SMSOptIn = *p.SMSOptIn
	}
}
