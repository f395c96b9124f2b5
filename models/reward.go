package models

import "time"

// Reward 代表顧客累積到門檻後獲得的獎勵
// Reward represents a grant minted when a customer reaches the visit threshold
type Reward struct {
	ID         uint64     `json:"id"`
	CustomerID uint64     `json:"customer_id"`
	BusinessID uint64     `json:"business_id"`
	Earned     bool       `json:"earned"`
	Redeemed   bool       `json:"redeemed"`
	EarnedAt   time.Time  `json:"earned_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func NewReward() *Reward {
	return &Reward{}
}

// Available reports whether the reward can still be redeemed. Expiry is
// tracked but not checked here.
func (r *Reward) Available() bool {
	return r.Earned && !r.Redeemed
}

// Expired reports whether the reward is past its expiry at t.
func (r *Reward) Expired(t time.Time) bool {
	return !r.ExpiresAt.IsZero() && t.After(r.ExpiresAt)
}
