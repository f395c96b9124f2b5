package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
)

type RewardHandler interface {
	AvailableRewards(c echo.Context) error
	RedeemReward(c echo.Context) error
}

type rewardHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewRewardHandler(l loyalty.Loyalty, logger *zap.Logger) RewardHandler {
	return &rewardHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// AvailableRewards handles GET /api/customers/:customerId/rewards
func (rh *rewardHandler) AvailableRewards(c echo.Context) error {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	rewards, err := rh.Loyalty.AvailableRewards(c.Request().Context(), customerID)
	if err != nil {
		return respondError(c, rh.logger, err)
	}

	return c.JSON(http.StatusOK, rewards)
}

// RedeemReward handles POST /api/rewards/:rewardId/redeem
func (rh *rewardHandler) RedeemReward(c echo.Context) error {
	rewardID, ok := pathID(c, "rewardId")
	if !ok {
		return badRequest(c, "Invalid reward id")
	}

	result, err := rh.Loyalty.RedeemReward(c.Request().Context(), rewardID)
	if err != nil {
		return respondError(c, rh.logger, err)
	}

	return c.JSON(http.StatusOK, result)
}
