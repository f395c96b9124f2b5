package customer

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"goflare.io/loyalty/accrual"
	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/business"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/event"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
)

type Service interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint64) (*models.Customer, error)
	GetByPhone(ctx context.Context, businessID uint64, phone string) (*models.Customer, error)
	ListWithProgress(ctx context.Context, businessID uint64) ([]models.CustomerWithProgress, error)
	Update(ctx context.Context, id uint64, changes *models.PartialCustomer) (*models.Customer, error)
}

type service struct {
	repo               Repository
	businessRepo       business.Repository
	transactionManager driver.Transactor
	publisher          event.Publisher
	logger             *zap.Logger
}

func NewService(repo Repository, businessRepo business.Repository, tm driver.Transactor, publisher event.Publisher, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		businessRepo:       businessRepo,
		transactionManager: tm,
		publisher:          publisher,
		logger:             logger,
	}
}

// Create registers a customer with zeroed counters and announces it with a
// welcome event once the row is committed.
func (s *service) Create(ctx context.Context, customer *models.Customer) error {
	if err := validate(customer); err != nil {
		return err
	}
	customer.Visits = 0
	customer.RewardsEarned = 0
	customer.RewardsRedeemed = 0
	customer.TotalSpent = 0
	customer.LastVisit = nil

	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.businessRepo.GetByID(ctx, tx, customer.BusinessID); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, customer)
	})
	if err != nil {
		return err
	}

	welcome := event.New(enum.EventTypeCustomerWelcome, customer.BusinessID, customer.ID, 0)
	if err = s.publisher.Publish(ctx, welcome); err != nil {
		s.logger.Warn("failed to publish welcome event", zap.Error(err), zap.Uint64("customer_id", customer.ID))
	}

	return nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (*models.Customer, error) {
	var customer *models.Customer
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		customer, err = s.repo.GetByID(ctx, tx, id)
		return err
	})
	return customer, err
}

func (s *service) GetByPhone(ctx context.Context, businessID uint64, phone string) (*models.Customer, error) {
	var customer *models.Customer
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		customer, err = s.repo.GetByPhone(ctx, tx, businessID, strings.TrimSpace(phone))
		return err
	})
	return customer, err
}

func (s *service) ListWithProgress(ctx context.Context, businessID uint64) ([]models.CustomerWithProgress, error) {
	var (
		b         *models.Business
		customers []*models.Customer
	)
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if b, err = s.businessRepo.GetByID(ctx, tx, businessID); err != nil {
			return err
		}
		customers, err = s.repo.ListByBusiness(ctx, tx, businessID)
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]models.CustomerWithProgress, 0, len(customers))
	for _, c := range customers {
		views = append(views, accrual.Progress(*c, *b))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uint64, changes *models.PartialCustomer) (*models.Customer, error) {
	var customer *models.Customer
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		customer, err = s.repo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		customer.Apply(changes)
		if err = validate(customer); err != nil {
			return err
		}

		return s.repo.Update(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func validate(customer *models.Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" {
		return apperr.InvalidInput("customer name is required")
	}
	if customer.Phone == "" {
		return apperr.InvalidInput("customer phone is required")
	}
	return nil
}
