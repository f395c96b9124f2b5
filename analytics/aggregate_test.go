package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/loyalty/models"
)

var (
	eat  = time.FixedZone("EAT", 3*60*60)
	asOf = time.Date(2026, 3, 14, 15, 0, 0, 0, eat)
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func visitAt(customerID uint64, at time.Time, amount int64, service *string) *models.Visit {
	return &models.Visit{
		CustomerID:  customerID,
		BusinessID:  1,
		VisitDate:   at,
		AmountSpent: amount,
		ServiceType: service,
	}
}

func sampleHistory() models.History {
	return models.History{
		BusinessID: 1,
		Customers: []*models.Customer{
			{ID: 1, BusinessID: 1, LastVisit: timePtr(asOf.AddDate(0, 0, -2)), TotalSpent: 1500},
			{ID: 2, BusinessID: 1, LastVisit: timePtr(asOf.AddDate(0, 0, -40)), TotalSpent: 1500},
			{ID: 3, BusinessID: 1},
		},
		Visits: []*models.Visit{
			visitAt(1, asOf.Add(-time.Hour), 500, strPtr("haircut")),
			visitAt(2, asOf.Add(-3*time.Hour), 0, strPtr("shave")),
			visitAt(1, time.Date(2026, 3, 2, 10, 0, 0, 0, eat), 1000, strPtr("haircut")),
			visitAt(2, time.Date(2026, 2, 20, 10, 0, 0, 0, eat), 1500, strPtr("shave")),
			visitAt(3, time.Date(2026, 2, 10, 10, 0, 0, 0, eat), 0, nil),
		},
		Rewards: []*models.Reward{
			{ID: 1, CustomerID: 1, Earned: true, EarnedAt: time.Date(2026, 3, 5, 9, 0, 0, 0, eat)},
			{ID: 2, CustomerID: 2, Earned: true, EarnedAt: time.Date(2026, 2, 27, 9, 0, 0, 0, eat)},
		},
	}
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		current, previous int64
		want              int
	}{
		{0, 0, 0},
		{5, 0, 100},
		{150, 100, 50},
		{50, 100, -50},
		{0, 4, -100},
		{1, 3, -67},
		{3, 2, 50},
		{201, 200, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_vs_%d", tt.current, tt.previous), func(t *testing.T) {
			assert.Equal(t, tt.want, Growth(tt.current, tt.previous))
		})
	}
}

func TestComputeDashboardStats_NoCustomers(t *testing.T) {
	stats := ComputeDashboardStats(models.History{BusinessID: 1}, asOf)

	assert.Equal(t, 0, stats.CustomerRetentionRate)
	assert.Equal(t, NoService, stats.TopService)
	assert.Equal(t, 0, stats.ActiveCustomers)
	assert.Equal(t, "KES 0.00", stats.TotalRevenue)
	assert.Equal(t, "KES 0.00", stats.AverageVisitValue)
}

func TestComputeDashboardStats(t *testing.T) {
	stats := ComputeDashboardStats(sampleHistory(), asOf)

	assert.Equal(t, 2, stats.TodayVisits)
	assert.Equal(t, 3, stats.ActiveCustomers)
	assert.Equal(t, 1, stats.RewardsEarned)
	assert.Equal(t, "KES 15.00", stats.MonthlyRevenue)
	assert.Equal(t, "KES 30.00", stats.TotalRevenue)
	assert.Equal(t, "KES 10.00", stats.AverageVisitValue)
	assert.Equal(t, "haircut", stats.TopService)
	assert.Equal(t, 33, stats.CustomerRetentionRate)

	assert.Equal(t, int64(1500), stats.Raw.MonthlyRevenue)
	assert.Equal(t, int64(3000), stats.Raw.TotalRevenue)
	assert.InDelta(t, 1000.0, stats.Raw.AverageVisitValue, 1e-9)
	assert.Equal(t, 1, stats.Raw.RecentCustomers)
}

func TestComputeDashboardStats_TodayUsesLocalCalendarDay(t *testing.T) {
	history := models.History{
		Visits: []*models.Visit{
			// 01:30 local on the 14th, still the 13th in UTC.
			visitAt(1, time.Date(2026, 3, 13, 22, 30, 0, 0, time.UTC), 100, nil),
			// 23:30 local on the 13th.
			visitAt(1, time.Date(2026, 3, 13, 20, 30, 0, 0, time.UTC), 100, nil),
		},
	}

	stats := ComputeDashboardStats(history, asOf)
	assert.Equal(t, 1, stats.TodayVisits)
}

func TestTopService_TieBreaksByName(t *testing.T) {
	assert.Equal(t, "beard", topService(map[string]int{"shave": 3, "beard": 3, "dye": 1}))
	assert.Equal(t, "dye", topService(map[string]int{"shave": 1, "dye": 4}))
	assert.Equal(t, NoService, topService(map[string]int{}))
}

func TestComputeAnalytics_VisitTrendsAreSparseAndSorted(t *testing.T) {
	data := ComputeAnalytics(sampleHistory(), asOf)

	require.Len(t, data.VisitTrends, 3)
	assert.Equal(t, "2026-02-20", data.VisitTrends[0].Date)
	assert.Equal(t, "2026-03-02", data.VisitTrends[1].Date)
	assert.Equal(t, "2026-03-14", data.VisitTrends[2].Date)

	assert.Equal(t, 2, data.VisitTrends[2].Visits)
	assert.InDelta(t, 5.0, data.VisitTrends[2].Revenue, 1e-9)
	assert.InDelta(t, 15.0, data.VisitTrends[0].Revenue, 1e-9)
}

func TestComputeAnalytics_TopCustomers(t *testing.T) {
	history := models.History{}
	for i := 1; i <= 12; i++ {
		history.Customers = append(history.Customers, &models.Customer{
			ID:         uint64(i),
			Visits:     int32(i),
			TotalSpent: int64(i%6) * 100,
		})
	}

	top := ComputeAnalytics(history, asOf).TopCustomers

	require.Len(t, top, TopCustomerMax)
	assert.Equal(t, uint64(5), top[0].Customer.ID)
	assert.Equal(t, uint64(11), top[1].Customer.ID)
	assert.Equal(t, int64(500), top[0].Spent)
	assert.Equal(t, int32(5), top[0].Visits)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Spent, top[i].Spent)
	}
}

func TestComputeAnalytics_ServicePopularity(t *testing.T) {
	history := sampleHistory()
	history.Visits = append(history.Visits, visitAt(3, asOf.Add(-2*time.Hour), 250, strPtr("dye")))

	popularity := ComputeAnalytics(history, asOf).ServicePopularity

	require.Len(t, popularity, 3)
	assert.Equal(t, "haircut", popularity[0].Service)
	assert.Equal(t, 2, popularity[0].Count)
	assert.InDelta(t, 15.0, popularity[0].Revenue, 1e-9)
	assert.Equal(t, "shave", popularity[1].Service)
	assert.Equal(t, "dye", popularity[2].Service)

	var withService int64
	for _, v := range history.Visits {
		if v.Service() != "" {
			withService += v.AmountSpent
		}
	}
	var sum float64
	for _, p := range popularity {
		sum += p.Revenue
	}
	assert.InDelta(t, float64(withService)/100, sum, 1e-9)
}

func TestComputeAnalytics_MonthlyGrowth(t *testing.T) {
	growth := ComputeAnalytics(sampleHistory(), asOf).MonthlyGrowth

	assert.Equal(t, 50, growth.Visits)
	assert.Equal(t, 0, growth.Revenue)
	assert.Equal(t, 0, growth.Customers)
}

func TestComputeAnalytics_EmptyHistory(t *testing.T) {
	data := ComputeAnalytics(models.History{}, asOf)

	assert.Empty(t, data.VisitTrends)
	assert.Empty(t, data.TopCustomers)
	assert.Empty(t, data.ServicePopularity)
	assert.Equal(t, models.MonthlyGrowth{}, data.MonthlyGrowth)
}
