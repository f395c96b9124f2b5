package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

type BusinessReader interface {
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Business, error)
}

type CustomerLister interface {
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Customer, error)
}

type VisitLister interface {
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Visit, error)
}

type RewardLister interface {
	ListByBusiness(ctx context.Context, tx pgx.Tx, businessID uint64) ([]*models.Reward, error)
}

type Service interface {
	DashboardStats(ctx context.Context, businessID uint64) (*models.DashboardStats, error)
	Analytics(ctx context.Context, businessID uint64) (*models.AnalyticsData, error)
}

type service struct {
	businesses         BusinessReader
	customers          CustomerLister
	visits             VisitLister
	rewards            RewardLister
	transactionManager driver.Transactor
	location           *time.Location
	logger             *zap.Logger
	now                func() time.Time
}

func NewService(
	businesses BusinessReader,
	customers CustomerLister,
	visits VisitLister,
	rewards RewardLister,
	tm driver.Transactor,
	location *time.Location,
	logger *zap.Logger,
) Service {
	if location == nil {
		location = time.UTC
	}
	return &service{
		businesses:         businesses,
		customers:          customers,
		visits:             visits,
		rewards:            rewards,
		transactionManager: tm,
		location:           location,
		logger:             logger,
		now:                time.Now,
	}
}

func (s *service) DashboardStats(ctx context.Context, businessID uint64) (*models.DashboardStats, error) {
	history, err := s.history(ctx, businessID)
	if err != nil {
		return nil, err
	}
	stats := ComputeDashboardStats(*history, s.now().In(s.location))
	return &stats, nil
}

func (s *service) Analytics(ctx context.Context, businessID uint64) (*models.AnalyticsData, error) {
	history, err := s.history(ctx, businessID)
	if err != nil {
		return nil, err
	}
	data := ComputeAnalytics(*history, s.now().In(s.location))
	return &data, nil
}

// history loads one consistent snapshot of a business's records.
func (s *service) history(ctx context.Context, businessID uint64) (*models.History, error) {
	history := &models.History{BusinessID: businessID}
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.businesses.GetByID(ctx, tx, businessID); err != nil {
			return err
		}

		var err error
		if history.Customers, err = s.customers.ListByBusiness(ctx, tx, businessID); err != nil {
			return err
		}
		if history.Visits, err = s.visits.ListByBusiness(ctx, tx, businessID); err != nil {
			return err
		}
		history.Rewards, err = s.rewards.ListByBusiness(ctx, tx, businessID)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to load business history", zap.Error(err), zap.Uint64("business_id", businessID))
		return nil, err
	}
	return history, nil
}
