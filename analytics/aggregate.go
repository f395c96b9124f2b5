// Package analytics derives read-only dashboard and trend views from a
// business's visit, customer and reward history.
//
// All money inputs are minor units (cents). Display strings and the float
// revenue fields are major units.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"goflare.io/loyalty/models"
)

const (
	Currency       = "KES"
	NoService      = "N/A"
	TrendDays      = 30
	RetentionDays  = 30
	TopCustomerMax = 10
	dateLayout     = "2006-01-02"
)

// Growth is the period-over-period change in percent, rounded half up.
// Growth from nothing is 100 when anything happened and 0 otherwise.
func Growth(current, previous int64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round(float64(current-previous) / float64(previous) * 100)
}

// FormatMoney renders a minor-unit amount as a display string, e.g. "KES 12.34".
func FormatMoney(minor float64) string {
	return fmt.Sprintf("%s %.2f", Currency, minor/100)
}

func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// within reports whether from <= t <= to.
func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// ComputeDashboardStats summarizes history as of asOf. Calendar boundaries
// (today, this month) are taken in asOf's location.
func ComputeDashboardStats(history models.History, asOf time.Time) models.DashboardStats {
	today := startOfDay(asOf)
	month := startOfMonth(asOf)
	recentSince := asOf.AddDate(0, 0, -RetentionDays)

	var (
		stats          models.DashboardStats
		nonZeroVisits  int
		nonZeroSpent   int64
		serviceCounts  = make(map[string]int)
		monthlyRevenue int64
		totalRevenue   int64
	)

	for _, v := range history.Visits {
		visitDate := v.VisitDate.In(asOf.Location())
		if within(visitDate, today, asOf) {
			stats.TodayVisits++
		}
		if within(visitDate, month, asOf) {
			monthlyRevenue += v.AmountSpent
		}
		totalRevenue += v.AmountSpent
		if v.AmountSpent > 0 {
			nonZeroVisits++
			nonZeroSpent += v.AmountSpent
		}
		if s := v.Service(); s != "" {
			serviceCounts[s]++
		}
	}

	for _, r := range history.Rewards {
		if r.Earned && within(r.EarnedAt.In(asOf.Location()), month, asOf) {
			stats.RewardsEarned++
		}
	}

	recent := 0
	for _, c := range history.Customers {
		if c.LastVisit != nil && within(*c.LastVisit, recentSince, asOf) {
			recent++
		}
	}
	stats.ActiveCustomers = len(history.Customers)
	if stats.ActiveCustomers > 0 {
		stats.CustomerRetentionRate = round(float64(recent) / float64(stats.ActiveCustomers) * 100)
	}

	var average float64
	if nonZeroVisits > 0 {
		average = float64(nonZeroSpent) / float64(nonZeroVisits)
	}

	stats.TopService = topService(serviceCounts)
	stats.MonthlyRevenue = FormatMoney(float64(monthlyRevenue))
	stats.TotalRevenue = FormatMoney(float64(totalRevenue))
	stats.AverageVisitValue = FormatMoney(average)
	stats.Raw = models.DashboardRaw{
		MonthlyRevenue:    monthlyRevenue,
		TotalRevenue:      totalRevenue,
		AverageVisitValue: average,
		RecentCustomers:   recent,
	}

	return stats
}

// topService picks the most frequent service; ties go to the
// lexicographically smallest name.
func topService(counts map[string]int) string {
	best, bestCount := NoService, 0
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

// ComputeAnalytics builds the trend, leaderboard and growth views as of asOf.
func ComputeAnalytics(history models.History, asOf time.Time) models.AnalyticsData {
	return models.AnalyticsData{
		VisitTrends:       visitTrends(history.Visits, asOf),
		TopCustomers:      topCustomers(history.Customers),
		ServicePopularity: servicePopularity(history.Visits),
		MonthlyGrowth:     monthlyGrowth(history.Visits, asOf),
	}
}

// visitTrends buckets the trailing window by local calendar day. Days with
// no visits are omitted.
func visitTrends(visits []*models.Visit, asOf time.Time) []models.TrendPoint {
	since := asOf.AddDate(0, 0, -TrendDays)
	buckets := make(map[string]*models.TrendPoint)

	for _, v := range visits {
		visitDate := v.VisitDate.In(asOf.Location())
		if !within(visitDate, since, asOf) {
			continue
		}
		day := visitDate.Format(dateLayout)
		point, ok := buckets[day]
		if !ok {
			point = &models.TrendPoint{Date: day}
			buckets[day] = point
		}
		point.Visits++
		point.RevenueMinor += v.AmountSpent
	}

	trends := make([]models.TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		point.Revenue = float64(point.RevenueMinor) / 100
		trends = append(trends, *point)
	}
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Date < trends[j].Date
	})
	return trends
}

func topCustomers(customers []*models.Customer) []models.TopCustomer {
	sorted := make([]*models.Customer, len(customers))
	copy(sorted, customers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalSpent != sorted[j].TotalSpent {
			return sorted[i].TotalSpent > sorted[j].TotalSpent
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > TopCustomerMax {
		sorted = sorted[:TopCustomerMax]
	}

	top := make([]models.TopCustomer, 0, len(sorted))
	for _, c := range sorted {
		top = append(top, models.TopCustomer{
			Customer: *c,
			Visits:   c.Visits,
			Spent:    c.TotalSpent,
		})
	}
	return top
}

func servicePopularity(visits []*models.Visit) []models.ServicePopularity {
	groups := make(map[string]*models.ServicePopularity)
	for _, v := range visits {
		name := v.Service()
		if name == "" {
			continue
		}
		group, ok := groups[name]
		if !ok {
			group = &models.ServicePopularity{Service: name}
			groups[name] = group
		}
		group.Count++
		group.RevenueMinor += v.AmountSpent
	}

	popularity := make([]models.ServicePopularity, 0, len(groups))
	for _, group := range groups {
		group.Revenue = float64(group.RevenueMinor) / 100
		popularity = append(popularity, *group)
	}
	sort.Slice(popularity, func(i, j int) bool {
		if popularity[i].Count != popularity[j].Count {
			return popularity[i].Count > popularity[j].Count
		}
		return popularity[i].Service < popularity[j].Service
	})
	return popularity
}

type period struct {
	visits    int64
	revenue   int64
	customers map[uint64]struct{}
}

func (p *period) add(v *models.Visit) {
	p.visits++
	p.revenue += v.AmountSpent
	p.customers[v.CustomerID] = struct{}{}
}

// monthlyGrowth compares the current month to date with the full previous
// calendar month.
func monthlyGrowth(visits []*models.Visit, asOf time.Time) models.MonthlyGrowth {
	currentStart := startOfMonth(asOf)
	previousStart := currentStart.AddDate(0, -1, 0)

	current := period{customers: make(map[uint64]struct{})}
	previous := period{customers: make(map[uint64]struct{})}

	for _, v := range visits {
		visitDate := v.VisitDate.In(asOf.Location())
		switch {
		case within(visitDate, currentStart, asOf):
			current.add(v)
		case !visitDate.Before(previousStart) && visitDate.Before(currentStart):
			previous.add(v)
		}
	}

	return models.MonthlyGrowth{
		Visits:    Growth(current.visits, previous.visits),
		Revenue:   Growth(current.revenue, previous.revenue),
		Customers: Growth(int64(len(current.customers)), int64(len(previous.customers))),
	}
}
