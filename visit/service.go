package visit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/models"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

type Service interface {
	ListRecent(ctx context.Context, businessID uint64, limit int) ([]*models.VisitWithCustomer, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]*models.Visit, error)
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

func (s *service) ListRecent(ctx context.Context, businessID uint64, limit int) ([]*models.VisitWithCustomer, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var visits []*models.VisitWithCustomer
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		visits, err = s.repo.ListRecent(ctx, tx, businessID, limit)
		return err
	})
	return visits, err
}

func (s *service) ListByCustomer(ctx context.Context, customerID uint64) ([]*models.Visit, error) {
	var visits []*models.Visit
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		visits, err = s.repo.ListByCustomer(ctx, tx, customerID)
		return err
	})
	return visits, err
}
