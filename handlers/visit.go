package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/models"
)

type VisitHandler interface {
	CheckIn(c echo.Context) error
	RecentVisits(c echo.Context) error
	CustomerVisits(c echo.Context) error
}

type visitHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewVisitHandler(l loyalty.Loyalty, logger *zap.Logger) VisitHandler {
	return &visitHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// CheckIn handles POST /api/business/:businessId/customers/:customerId/checkin
func (vh *visitHandler) CheckIn(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	var input models.VisitInput
	if err := decodeBody(c, checkInBody, &input, true); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := vh.Loyalty.CheckIn(c.Request().Context(), businessID, customerID, input)
	if err != nil {
		return respondError(c, vh.logger, err)
	}

	return c.JSON(http.StatusOK, result)
}

// RecentVisits handles GET /api/business/:businessId/visits/recent
func (vh *visitHandler) RecentVisits(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}
	limit, ok := queryLimit(c)
	if !ok {
		return badRequest(c, "Invalid limit")
	}

	visits, err := vh.Loyalty.RecentVisits(c.Request().Context(), businessID, limit)
	if err != nil {
		return respondError(c, vh.logger, err)
	}

	return c.JSON(http.StatusOK, visits)
}

// CustomerVisits handles GET /api/customers/:customerId/visits
func (vh *visitHandler) CustomerVisits(c echo.Context) error {
	customerID, ok := pathID(c, "customerId")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	visits, err := vh.Loyalty.CustomerVisits(c.Request().Context(), customerID)
	if err != nil {
		return respondError(c, vh.logger, err)
	}

	return c.JSON(http.StatusOK, visits)
}
