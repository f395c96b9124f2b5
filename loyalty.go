package loyalty

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"goflare.io/loyalty/accrual"
	"goflare.io/loyalty/analytics"
	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/business"
	"goflare.io/loyalty/config"
	"goflare.io/loyalty/customer"
	"goflare.io/loyalty/models"
	"goflare.io/loyalty/models/enum"
	"goflare.io/loyalty/notification"
	"goflare.io/loyalty/reward"
	"goflare.io/loyalty/visit"
)

type Loyalty interface {
	CreateBusiness(ctx context.Context, b *models.Business) error
	GetBusiness(ctx context.Context, businessID uint64) (*models.Business, error)
	UpdateBusiness(ctx context.Context, businessID uint64, changes *models.PartialBusiness) (*models.Business, error)
	CheckInQR(ctx context.Context, businessID uint64, baseURL string) (*models.QRPayload, error)

	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, customerID uint64) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, businessID uint64, phone string) (*models.Customer, error)
	ListCustomers(ctx context.Context, businessID uint64) ([]models.CustomerWithProgress, error)
	UpdateCustomer(ctx context.Context, customerID uint64, changes *models.PartialCustomer) (*models.Customer, error)

	CheckIn(ctx context.Context, businessID, customerID uint64, input models.VisitInput) (*accrual.CheckInResult, error)
	RecentVisits(ctx context.Context, businessID uint64, limit int) ([]*models.VisitWithCustomer, error)
	CustomerVisits(ctx context.Context, customerID uint64) ([]*models.Visit, error)

	AvailableRewards(ctx context.Context, customerID uint64) ([]*models.Reward, error)
	RedeemReward(ctx context.Context, rewardID uint64) (*accrual.RedeemResult, error)

	DashboardStats(ctx context.Context, businessID uint64) (*models.DashboardStats, error)
	Analytics(ctx context.Context, businessID uint64) (*models.AnalyticsData, error)

	SendSMS(ctx context.Context, req notification.SendRequest) (*models.SMSNotification, error)
	ListSMS(ctx context.Context, businessID uint64, limit int) ([]*models.SMSNotification, error)

	Close()
}

var _ Loyalty = (*Program)(nil)

// Program wires the per-entity services together and runs the background
// event workers that send customer notifications.
type Program struct {
	eventManager *EventManager
	workerPool   *WorkerPool
	logger       *zap.Logger

	business     business.Service
	customer     customer.Service
	visit        visit.Service
	reward       reward.Service
	accrual      accrual.Service
	analytics    analytics.Service
	notification notification.Service
}

func NewProgram(
	appConfig *config.Config,
	eventManager *EventManager,
	bs business.Service,
	cs customer.Service,
	vs visit.Service,
	rs reward.Service,
	as accrual.Service,
	ans analytics.Service,
	ns notification.Service,
	logger *zap.Logger,
) (Loyalty, error) {
	p := &Program{
		eventManager: eventManager,
		logger:       logger,
		business:     bs,
		customer:     cs,
		visit:        vs,
		reward:       rs,
		accrual:      as,
		analytics:    ans,
		notification: ns,
	}

	p.registerEventHandlers()
	p.workerPool = NewWorkerPool(appConfig.Worker.MinWorkers, appConfig.Worker.MaxWorkers, appConfig.Worker.QueueSize, eventManager, logger)

	if err := eventManager.SubscribeToEvents(p.workerPool); err != nil {
		p.workerPool.Stop()
		return nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	return p, nil
}

func (p *Program) registerEventHandlers() {
	p.eventManager.RegisterHandler(enum.EventTypeRewardEarned, p.handleRewardEarned)
	p.eventManager.RegisterHandler(enum.EventTypeCustomerWelcome, p.handleCustomerWelcome)
}

func (p *Program) CreateBusiness(ctx context.Context, b *models.Business) error {
	return p.business.Create(ctx, b)
}

func (p *Program) GetBusiness(ctx context.Context, businessID uint64) (*models.Business, error) {
	return p.business.GetByID(ctx, businessID)
}

func (p *Program) UpdateBusiness(ctx context.Context, businessID uint64, changes *models.PartialBusiness) (*models.Business, error) {
	return p.business.Update(ctx, businessID, changes)
}

// CheckInQR builds the payload customers scan to reach the check-in page.
func (p *Program) CheckInQR(ctx context.Context, businessID uint64, baseURL string) (*models.QRPayload, error) {
	b, err := p.business.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &models.QRPayload{
		QRData:       fmt.Sprintf("%s/checkin/%d", strings.TrimRight(baseURL, "/"), b.ID),
		BusinessName: b.Name,
	}, nil
}

func (p *Program) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return p.customer.Create(ctx, c)
}

func (p *Program) GetCustomer(ctx context.Context, customerID uint64) (*models.Customer, error) {
	return p.customer.GetByID(ctx, customerID)
}

func (p *Program) GetCustomerByPhone(ctx context.Context, businessID uint64, phone string) (*models.Customer, error) {
	return p.customer.GetByPhone(ctx, businessID, phone)
}

func (p *Program) ListCustomers(ctx context.Context, businessID uint64) ([]models.CustomerWithProgress, error) {
	return p.customer.ListWithProgress(ctx, businessID)
}

func (p *Program) UpdateCustomer(ctx context.Context, customerID uint64, changes *models.PartialCustomer) (*models.Customer, error) {
	return p.customer.Update(ctx, customerID, changes)
}

func (p *Program) CheckIn(ctx context.Context, businessID, customerID uint64, input models.VisitInput) (*accrual.CheckInResult, error) {
	return p.accrual.CheckIn(ctx, businessID, customerID, input)
}

func (p *Program) RecentVisits(ctx context.Context, businessID uint64, limit int) ([]*models.VisitWithCustomer, error) {
	return p.visit.ListRecent(ctx, businessID, limit)
}

func (p *Program) CustomerVisits(ctx context.Context, customerID uint64) ([]*models.Visit, error) {
	if _, err := p.customer.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return p.visit.ListByCustomer(ctx, customerID)
}

func (p *Program) AvailableRewards(ctx context.Context, customerID uint64) ([]*models.Reward, error) {
	if _, err := p.customer.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return p.reward.ListAvailable(ctx, customerID)
}

func (p *Program) RedeemReward(ctx context.Context, rewardID uint64) (*accrual.RedeemResult, error) {
	return p.accrual.Redeem(ctx, rewardID)
}

func (p *Program) DashboardStats(ctx context.Context, businessID uint64) (*models.DashboardStats, error) {
	return p.analytics.DashboardStats(ctx, businessID)
}

func (p *Program) Analytics(ctx context.Context, businessID uint64) (*models.AnalyticsData, error) {
	return p.analytics.Analytics(ctx, businessID)
}

// SendSMS sends a manual message on behalf of a business. A referenced
// customer must belong to that business.
func (p *Program) SendSMS(ctx context.Context, req notification.SendRequest) (*models.SMSNotification, error) {
	if _, err := p.business.GetByID(ctx, req.BusinessID); err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		c, err := p.customer.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if c.BusinessID != req.BusinessID {
			return nil, apperr.NotFound("customer", *req.CustomerID)
		}
	}
	return p.notification.Send(ctx, req)
}

func (p *Program) ListSMS(ctx context.Context, businessID uint64, limit int) ([]*models.SMSNotification, error) {
	return p.notification.ListByBusiness(ctx, businessID, limit)
}

func (p *Program) Close() {
	p.workerPool.Stop()
	p.logger.Info("loyalty program stopped")
}
