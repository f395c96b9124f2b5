package models

import "time"

const (
	DefaultVisitsRequired    = 10
	DefaultRewardExpiryDays  = 30
	DefaultRewardDescription = "Free service"
)

// Business 代表參與集點計畫的商家
// Business represents a merchant running a visit-based loyalty program
type Business struct {
	ID                uint64    `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	VisitsRequired    int32     `json:"visits_required"`
	RewardDescription string    `json:"reward_description"`
	SMSEnabled        bool      `json:"sms_enabled"`
	RewardExpiryDays  int32     `json:"reward_expiry_days"`
	CreatedAt         time.Time `json:"created_at"`
}

// PartialBusiness carries the fields of a business update; nil means unchanged.
type PartialBusiness struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	VisitsRequired    *int32  `json:"visits_required"`
	RewardDescription *string `json:"reward_description"`
	SMSEnabled        *bool   `json:"sms_enabled"`
	RewardExpiryDays  *int32  `json:"reward_expiry_days"`
}

func NewBusiness() *Business {
	return &Business{
		VisitsRequired:    DefaultVisitsRequired,
		RewardDescription: DefaultRewardDescription,
		SMSEnabled:        true,
		RewardExpiryDays:  DefaultRewardExpiryDays,
	}
}

// Apply copies the non-nil fields of p onto b.
func (b *Business) Apply(p *PartialBusiness) {
	if p == nil {
		return
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Address != nil {
		b.Address = *p.Address
	}
	if p.VisitsRequired != nil {
		b.VisitsRequired = *p.VisitsRequired
	}
	if p.RewardDescription != nil {
		b.RewardDescription = *p.RewardDescription
	}
	if p.SMSEnabled != nil {
		b.SMSEnabled = *p.SMSEnabled
	}
	if p.RewardExpiryDays != nil {
		b.RewardExpiryDays = *p.RewardExpiryDays
	}
}
