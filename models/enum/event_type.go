package enum

type EventType string

const (
	EventTypeRewardEarned    EventType = "reward_earned"
	EventTypeCustomerWelcome EventType = "customer_welcome"
)
