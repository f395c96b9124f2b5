package models

// DashboardStats 是儀表板的彙總數據
// DashboardStats is the headline view of a business's loyalty activity
type DashboardStats struct {
	TodayVisits           int          `json:"today_visits"`
	ActiveCustomers       int          `json:"active_customers"`
	RewardsEarned         int          `json:"rewards_earned"`
	MonthlyRevenue        string       `json:"monthly_revenue"`
	TotalRevenue          string       `json:"total_revenue"`
	AverageVisitValue     string       `json:"average_visit_value"`
	TopService            string       `json:"top_service"`
	CustomerRetentionRate int          `json:"customer_retention_rate"`
	Raw                   DashboardRaw `json:"-"`
}

// DashboardRaw keeps the numeric values behind the display strings, in minor units.
type DashboardRaw struct {
	MonthlyRevenue    int64
	TotalRevenue      int64
	AverageVisitValue float64
	RecentCustomers   int
}

type TrendPoint struct {
	Date         string  `json:"date"`
	Visits       int     `json:"visits"`
	Revenue      float64 `json:"revenue"`
	RevenueMinor int64   `json:"-"`
}

type TopCustomer struct {
	Customer Customer `json:"customer"`
	Visits   int32    `json:"visits"`
	Spent    int64    `json:"spent"`
}

type ServicePopularity struct {
	Service      string  `json:"service"`
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	RevenueMinor int64   `json:"-"`
}

type MonthlyGrowth struct {
	Visits    int `json:"visits"`
	Revenue   int `json:"revenue"`
	Customers int `json:"customers"`
}

type AnalyticsData struct {
	VisitTrends       []TrendPoint        `json:"visit_trends"`
	TopCustomers      []TopCustomer       `json:"top_customers"`
	ServicePopularity []ServicePopularity `json:"service_popularity"`
	MonthlyGrowth     MonthlyGrowth       `json:"monthly_growth"`
}

// History is everything the analytics aggregator needs about one business.
type History struct {
	BusinessID uint64
	Customers  []*Customer
	Visits     []*Visit
	Rewards    []*Reward
}
