package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/driver/drivertest"
	"goflare.io/loyalty/models"
)

type historyStore struct {
	history models.History
}

func (h *historyStore) GetByID(_ context.Context, _ pgx.Tx, id uint64) (*models.Business, error) {
	if id != h.history.BusinessID {
		return nil, apperr.NotFound("business", id)
	}
	return &models.Business{ID: id, VisitsRequired: 10}, nil
}

type customerList struct{ *historyStore }

func (c customerList) ListByBusiness(context.Context, pgx.Tx, uint64) ([]*models.Customer, error) {
	return c.history.Customers, nil
}

type visitList struct{ *historyStore }

func (v visitList) ListByBusiness(context.Context, pgx.Tx, uint64) ([]*models.Visit, error) {
	return v.history.Visits, nil
}

type rewardList struct{ *historyStore }

func (r rewardList) ListByBusiness(context.Context, pgx.Tx, uint64) ([]*models.Reward, error) {
	return r.history.Rewards, nil
}

func newTestService(store *historyStore) *service {
	svc := NewService(store, customerList{store}, visitList{store}, rewardList{store},
		&drivertest.Transactor{}, eat, zap.NewNop()).(*service)
	// asOf expressed in UTC; the service must move it into the business zone.
	svc.now = func() time.Time { return asOf.UTC() }
	return svc
}

func TestService_DashboardStats(t *testing.T) {
	svc := newTestService(&historyStore{history: sampleHistory()})

	stats, err := svc.DashboardStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TodayVisits)
	assert.Equal(t, "haircut", stats.TopService)
}

func TestService_Analytics(t *testing.T) {
	svc := newTestService(&historyStore{history: sampleHistory()})

	data, err := svc.Analytics(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, data.VisitTrends, 3)
	assert.Equal(t, 50, data.MonthlyGrowth.Visits)
}

func TestService_UnknownBusiness(t *testing.T) {
	svc := newTestService(&historyStore{history: sampleHistory()})

	_, err := svc.DashboardStats(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Analytics(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
