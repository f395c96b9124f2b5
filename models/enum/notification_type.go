package enum

type NotificationType string

const (
	NotificationTypeWelcome        NotificationType = "welcome"
	NotificationTypeRewardEarned   NotificationType = "reward_earned"
	NotificationTypeRewardReminder NotificationType = "reward_reminder"
	NotificationTypeReminder       NotificationType = "reminder"
	NotificationTypePromotion      NotificationType = "promotion"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeWelcome, NotificationTypeRewardEarned, NotificationTypeRewardReminder,
		NotificationTypeReminder, NotificationTypePromotion:
		return true
	}
	return false
}
