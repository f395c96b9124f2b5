package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/models"
)

type BusinessHandler interface {
	CreateBusiness(c echo.Context) error
	GetBusiness(c echo.Context) error
	UpdateBusiness(c echo.Context) error
	CheckInQR(c echo.Context) error
}

type businessHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewBusinessHandler(l loyalty.Loyalty, logger *zap.Logger) BusinessHandler {
	return &businessHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// CreateBusiness handles POST /api/business
func (bh *businessHandler) CreateBusiness(c echo.Context) error {
	business := models.NewBusiness()
	if err := decodeBody(c, newBusinessBody, business, false); err != nil {
		return badRequest(c, err.Error())
	}

	if err := bh.Loyalty.CreateBusiness(c.Request().Context(), business); err != nil {
		return respondError(c, bh.logger, err)
	}

	return c.JSON(http.StatusCreated, business)
}

// GetBusiness handles GET /api/business/:id
func (bh *businessHandler) GetBusiness(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	business, err := bh.Loyalty.GetBusiness(c.Request().Context(), id)
	if err != nil {
		return respondError(c, bh.logger, err)
	}

	return c.JSON(http.StatusOK, business)
}

// UpdateBusiness handles PUT /api/business/:id
func (bh *businessHandler) UpdateBusiness(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	var changes models.PartialBusiness
	if err := decodeBody(c, updateBusinessBody, &changes, false); err != nil {
		return badRequest(c, err.Error())
	}

	business, err := bh.Loyalty.UpdateBusiness(c.Request().Context(), id, &changes)
	if err != nil {
		return respondError(c, bh.logger, err)
	}

	return c.JSON(http.StatusOK, business)
}

// CheckInQR handles GET /api/business/:businessId/qr
func (bh *businessHandler) CheckInQR(c echo.Context) error {
	id, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	payload, err := bh.Loyalty.CheckInQR(c.Request().Context(), id, baseURL)
	if err != nil {
		return respondError(c, bh.logger, err)
	}

	return c.JSON(http.StatusOK, payload)
}
