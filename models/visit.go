package models

import "time"

// Visit is a single check-in. It is immutable once written.
type Visit struct {
	ID           uint64    `json:"id"`
	CustomerID   uint64    `json:"customer_id"`
	BusinessID   uint64    `json:"business_id"`
	VisitDate    time.Time `json:"visit_date"`
	RewardEarned bool      `json:"reward_earned"`
	ServiceType  *string   `json:"service_type,omitempty"`
	AmountSpent  int64     `json:"amount_spent"`
	Notes        string    `json:"notes,omitempty"`
	Rating       *int32    `json:"rating,omitempty"`
}

// VisitInput is what the caller supplies for a check-in.
type VisitInput struct {
	AmountSpent int64   `json:"amount_spent"`
	ServiceType *string `json:"service_type"`
	Notes       string  `json:"notes"`
	Rating      *int32  `json:"rating"`
}

type VisitWithCustomer struct {
	Visit
	Customer Customer `json:"customer"`
}

func NewVisit() *Visit {
	return &Visit{}
}

// Service returns the service type, or "" when the visit has none.
func (v *Visit) Service() string {
	if v.ServiceType == nil {
		return ""
	}
	return *v.ServiceType
}
