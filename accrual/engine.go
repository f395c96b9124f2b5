// Package accrual turns check-ins into customer state and reward grants.
//
// The functions in engine.go are pure: they take entity snapshots and return
// updated snapshots. Service wraps them in a serializable transaction so the
// read-modify-write of a check-in or redemption is applied as one unit.
package accrual

import (
	"math"
	"strings"
	"time"

	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/models"
)

// CheckInResult is the outcome of one check-in. Reward is nil when the visit
// did not complete a cycle.
type CheckInResult struct {
	Customer models.Customer `json:"customer"`
	Visit    models.Visit    `json:"visit"`
	Reward   *models.Reward  `json:"reward,omitempty"`
}

// ValidatePolicy checks the reward policy of a business.
func ValidatePolicy(business models.Business) error {
	if business.VisitsRequired <= 0 {
		return apperr.InvalidPolicy("visits required must be positive, got %d", business.VisitsRequired)
	}
	if business.RewardExpiryDays < 0 {
		return apperr.InvalidPolicy("reward expiry days must not be negative, got %d", business.RewardExpiryDays)
	}
	return nil
}

// ValidateVisitInput checks the caller-supplied part of a check-in.
func ValidateVisitInput(input models.VisitInput) error {
	if input.AmountSpent < 0 {
		return apperr.InvalidInput("amount spent must not be negative")
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return apperr.InvalidInput("rating must be between 1 and 5")
	}
	return nil
}

// RecordVisit applies one check-in. Every visitsRequired-th visit mints a
// reward; the counter is never reset, so unredeemed rewards can accumulate
// across cycles.
func RecordVisit(customer models.Customer, business models.Business, input models.VisitInput, now time.Time) (*CheckInResult, error) {
	if err := ValidatePolicy(business); err != nil {
		return nil, err
	}
	if err := ValidateVisitInput(input); err != nil {
		return nil, err
	}
	if customer.BusinessID != business.ID {
		return nil, apperr.InvalidInput("customer %d does not belong to business %d", customer.ID, business.ID)
	}

	newVisitCount := customer.Visits + 1

	visit := models.Visit{
		CustomerID:  customer.ID,
		BusinessID:  business.ID,
		VisitDate:   now,
		ServiceType: normalizeService(input.ServiceType),
		AmountSpent: input.AmountSpent,
		Notes:       input.Notes,
		Rating:      input.Rating,
	}

	var reward *models.Reward
	if newVisitCount%business.VisitsRequired == 0 {
		reward = &models.Reward{
			CustomerID: customer.ID,
			BusinessID: business.ID,
			Earned:     true,
			Redeemed:   false,
			EarnedAt:   now,
			ExpiresAt:  now.AddDate(0, 0, int(business.RewardExpiryDays)),
		}
		customer.RewardsEarned++
		visit.RewardEarned = true
	}

	customer.Visits = newVisitCount
	lastVisit := now
	customer.LastVisit = &lastVisit
	if input.AmountSpent > 0 {
		customer.TotalSpent += input.AmountSpent
	}

	return &CheckInResult{
		Customer: customer,
		Visit:    visit,
		Reward:   reward,
	}, nil
}

// RedeemReward marks reward redeemed and bumps the owner's redeemed counter.
func RedeemReward(reward models.Reward, customer models.Customer, now time.Time) (models.Reward, models.Customer, error) {
	if reward.Redeemed {
		return reward, customer, apperr.AlreadyRedeemed(reward.ID)
	}
	if !reward.Earned {
		return reward, customer, apperr.InvalidInput("reward %d has not been earned", reward.ID)
	}
	if customer.ID != reward.CustomerID {
		return reward, customer, apperr.InvalidInput("reward %d does not belong to customer %d", reward.ID, customer.ID)
	}
	if customer.RewardsRedeemed >= customer.RewardsEarned {
		return reward, customer, apperr.InvalidInput("customer %d has no unredeemed rewards", customer.ID)
	}

	redeemedAt := now
	reward.Redeemed = true
	reward.RedeemedAt = &redeemedAt
	customer.RewardsRedeemed++

	return reward, customer, nil
}

// Progress derives the list view of a customer.
func Progress(customer models.Customer, business models.Business) models.CustomerWithProgress {
	view := models.CustomerWithProgress{Customer: customer}

	if business.VisitsRequired > 0 {
		pct := float64(customer.Visits) / float64(business.VisitsRequired) * 100
		view.ProgressPercentage = math.Min(pct, 100)
		view.HasAvailableReward = customer.Visits >= business.VisitsRequired &&
			customer.RewardsEarned > customer.RewardsRedeemed
	}

	if customer.TotalSpent > 0 {
		visits := customer.Visits
		if visits < 1 {
			visits = 1
		}
		view.AverageSpent = float64(customer.TotalSpent) / float64(visits)
	}

	return view
}

func normalizeService(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
