package business

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/accrual"
	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

type Service interface {
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id uint64) (*models.Business, error)
	Update(ctx context.Context, id uint64, changes *models.PartialBusiness) (*models.Business, error)
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

func (s *service) Create(ctx context.Context, business *models.Business) error {
	if err := validate(business); err != nil {
		return err
	}
	if err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.Create(ctx, tx, business)
	}); err != nil {
		return err
	}

	s.repo.Cache(ctx, business)
	return nil
}

// GetByID reads outside a transaction so the cache can serve it.
func (s *service) GetByID(ctx context.Context, id uint64) (*models.Business, error) {
	return s.repo.GetByID(ctx, nil, id)
}

func (s *service) Update(ctx context.Context, id uint64, changes *models.PartialBusiness) (*models.Business, error) {
	var business *models.Business
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		business, err = s.repo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		business.Apply(changes)
		if err = validate(business); err != nil {
			return err
		}

		return s.repo.Update(ctx, tx, business)
	})
	if err != nil {
		return nil, err
	}

	s.repo.Invalidate(ctx, id)
	s.logger.Info("business updated", zap.Uint64("business_id", id))
	return business, nil
}

func validate(business *models.Business) error {
	business.Name = strings.TrimSpace(business.Name)
	if business.Name == "" {
		return apperr.InvalidInput("business name is required")
	}
	if business.RewardDescription == "" {
		business.RewardDescription = models.DefaultRewardDescription
	}
	return accrual.ValidatePolicy(*business)
}
