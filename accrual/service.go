package accrual

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/event"
	"goflare.io/loyalty/metrics"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

type BusinessReader interface {
	GetByIDForShare(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error)
}

type CustomerStore interface {
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Customer, error)
	UpdateCounters(ctx context.Context, tx pgx.Tx, customer *models.Customer) error
}

type VisitWriter interface {
	Create(ctx context.Context, tx pgx.Tx, visit *models.Visit) error
}

type RewardStore interface {
	Create(ctx context.Context, tx pgx.Tx, reward *models.Reward) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*models.Reward, error)
	Update(ctx context.Context, tx pgx.Tx, reward *models.Reward) error
}

// RedeemResult is the state after a successful redemption.
type RedeemResult struct {
	Reward   models.Reward   `json:"reward"`
	Customer models.Customer `json:"customer"`
}

type Service interface {
	CheckIn(ctx context.Context, businessID, customerID uint64, input models.VisitInput) (*CheckInResult, error)
	Redeem(ctx context.Context, rewardID uint64) (*RedeemResult, error)
}

type service struct {
	businesses         BusinessReader
	customers          CustomerStore
	visits             VisitWriter
	rewards            RewardStore
	transactionManager driver.Transactor
	publisher          event.Publisher
	logger             *zap.Logger
	now                func() time.Time
}

func NewService(
	businesses BusinessReader,
	customers CustomerStore,
	visits VisitWriter,
	rewards RewardStore,
	tm driver.Transactor,
	publisher event.Publisher,
	logger *zap.Logger,
) Service {
	return &service{
		businesses:         businesses,
		customers:          customers,
		visits:             visits,
		rewards:            rewards,
		transactionManager: tm,
		publisher:          publisher,
		logger:             logger,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// CheckIn records a visit for a customer of businessID. The customer row is
// locked for the duration of the transaction, so concurrent check-ins for
// the same customer are applied one after the other.
func (s *service) CheckIn(ctx context.Context, businessID, customerID uint64, input models.VisitInput) (*CheckInResult, error) {
	if err := ValidateVisitInput(input); err != nil {
		return nil, err
	}

	start := time.Now()
	var result *CheckInResult
	err := s.transactionManager.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		customer, err := s.customers.GetByIDForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer.BusinessID != businessID {
			return apperr.NotFound("customer", customerID)
		}

		business, err := s.businesses.GetByIDForShare(ctx, tx, businessID)
		if err != nil {
			return err
		}

		result, err = RecordVisit(*customer, *business, input, s.now())
		if err != nil {
			return err
		}

		if err = s.customers.UpdateCounters(ctx, tx, &result.Customer); err != nil {
			return err
		}
		if err = s.visits.Create(ctx, tx, &result.Visit); err != nil {
			return err
		}
		if result.Reward != nil {
			if err = s.rewards.Create(ctx, tx, result.Reward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("check-in failed",
			zap.Error(err),
			zap.Uint64("business_id", businessID),
			zap.Uint64("customer_id", customerID))
		return nil, err
	}

	metrics.RecordCheckIn(result.Reward != nil, time.Since(start).Seconds())

	if result.Reward != nil {
		s.logger.Info("reward earned",
			zap.Uint64("customer_id", customerID),
			zap.Uint64("reward_id", result.Reward.ID))
		earned := event.New(enum.EventTypeRewardEarned, businessID, customerID, result.Reward.ID)
		if err = s.publisher.Publish(ctx, earned); err != nil {
			s.logger.Warn("failed to publish reward earned event", zap.Error(err), zap.String("event_id", earned.ID))
		}
	}

	return result, nil
}

// Redeem marks a reward redeemed and bumps its owner's redeemed counter in
// one transaction. A second redemption of the same reward fails with
// AlreadyRedeemed and changes nothing.
func (s *service) Redeem(ctx context.Context, rewardID uint64) (*RedeemResult, error) {
	var result *RedeemResult
	err := s.transactionManager.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		reward, err := s.rewards.GetByIDForUpdate(ctx, tx, rewardID)
		if err != nil {
			return err
		}

		customer, err := s.customers.GetByIDForUpdate(ctx, tx, reward.CustomerID)
		if err != nil {
			return err
		}

		redeemed, updated, err := RedeemReward(*reward, *customer, s.now())
		if err != nil {
			return err
		}

		if err = s.rewards.Update(ctx, tx, &redeemed); err != nil {
			return err
		}
		if err = s.customers.UpdateCounters(ctx, tx, &updated); err != nil {
			return err
		}

		result = &RedeemResult{Reward: redeemed, Customer: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RewardsRedeemed.Inc()
	s.logger.Info("reward redeemed",
		zap.Uint64("reward_id", rewardID),
		zap.Uint64("customer_id", result.Customer.ID))

	return result, nil
}
