package reward

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

type Service interface {
	GetByID(ctx context.Context, id uint64) (*models.Reward, error)
	ListAvailable(ctx context.Context, customerID uint64) ([]*models.Reward, error)
}

type service struct {
	repo               Repository
	transactionManager driver.Transactor
	logger             *zap.Logger
}

func NewService(repo Repository, tm driver.Transactor, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		transactionManager: tm,
		logger:             logger,
	}
}

func (s *service) GetByID(ctx context.Context, id uint64) (*models.Reward, error) {
	var reward *models.Reward
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		reward, err = s.repo.GetByID(ctx, tx, id)
		return err
	})
	return reward, err
}

// ListAvailable returns the customer's earned, unredeemed rewards, oldest first.
func (s *service) ListAvailable(ctx context.Context, customerID uint64) ([]*models.Reward, error) {
	var rewards []*models.Reward
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		rewards, err = s.repo.ListAvailable(ctx, tx, customerID)
		return err
	})
	return rewards, err
}
