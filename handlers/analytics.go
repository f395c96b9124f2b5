package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
)

type AnalyticsHandler interface {
	DashboardStats(c echo.Context) error
	Analytics(c echo.Context) error
}

type analyticsHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewAnalyticsHandler(l loyalty.Loyalty, logger *zap.Logger) AnalyticsHandler {
	return &analyticsHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// DashboardStats handles GET /api/business/:businessId/stats
func (ah *analyticsHandler) DashboardStats(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	stats, err := ah.Loyalty.DashboardStats(c.Request().Context(), businessID)
	if err != nil {
		return respondError(c, ah.logger, err)
	}

	return c.JSON(http.StatusOK, stats)
}

// Analytics handles GET /api/business/:businessId/analytics
func (ah *analyticsHandler) Analytics(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	data, err := ah.Loyalty.Analytics(c.Request().Context(), businessID)
	if err != nil {
		return respondError(c, ah.logger, err)
	}

	return c.JSON(http.StatusOK, data)
}
