package loyalty

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
	"goflare.io/loyalty/notification"
)

func (p *Program) handleRewardEarned(ctx context.Context, e *models.Event) error {
	return p.notifyCustomer(ctx, e, enum.NotificationTypeRewardEarned, func(b *models.Business, c *models.Customer) string {
		return fmt.Sprintf("Congratulations %s! You've earned a reward at %s: %s. Show this message on your next visit.",
			c.Name, b.Name, b.RewardDescription)
	})
}

func (p *Program) handleCustomerWelcome(ctx context.Context, e *models.Event) error {
	return p.notifyCustomer(ctx, e, enum.NotificationTypeWelcome, func(b *models.Business, c *models.Customer) string {
		return fmt.Sprintf("Welcome to %s, %s! Every %d visits earns you a %s.",
			b.Name, c.Name, b.VisitsRequired, b.RewardDescription)
	})
}

// notifyCustomer sends an SMS only when the business has SMS enabled and the
// customer has opted in.
func (p *Program) notifyCustomer(
	ctx context.Context,
	e *models.Event,
	notificationType enum.NotificationType,
	message func(*models.Business, *models.Customer) string,
) error {
	b, err := p.business.GetByID(ctx, e.BusinessID)
	if err != nil {
		return err
	}
	c, err := p.customer.GetByID(ctx, e.CustomerID)
	if err != nil {
		return err
	}

	if !b.SMSEnabled || !c.SMSOptIn {
		p.logger.Debug("sms skipped",
			zap.String("event_id", e.ID),
			zap.Bool("sms_enabled", b.SMSEnabled),
			zap.Bool("sms_opt_in", c.SMSOptIn))
		return nil
	}

	customerID := c.ID
	_, err = p.notification.Send(ctx, notification.SendRequest{
		BusinessID: b.ID,
		CustomerID: &customerID,
		Phone:      c.Phone,
		Message:    message(b, c),
		Type:       notificationType,
	})
	return err
}
