package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/notification"
)

type SMSHandler interface {
	SendSMS(c echo.Context) error
	ListSMS(c echo.Context) error
}

type smsHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewSMSHandler(l loyalty.Loyalty, logger *zap.Logger) SMSHandler {
	return &smsHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// SendSMS handles POST /api/business/:businessId/sms
func (sh *smsHandler) SendSMS(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	var req notification.SendRequest
	if err := decodeBody(c, smsBody, &req, false); err != nil {
		return badRequest(c, err.Error())
	}
	req.BusinessID = businessID

	sms, err := sh.Loyalty.SendSMS(c.Request().Context(), req)
	if err != nil {
		return respondError(c, sh.logger, err)
	}

	return c.JSON(http.StatusCreated, sms)
}

// ListSMS handles GET /api/business/:businessId/sms
func (sh *smsHandler) ListSMS(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}
	limit, ok := queryLimit(c)
	if !ok {
		return badRequest(c, "Invalid limit")
	}

	notifications, err := sh.Loyalty.ListSMS(c.Request().Context(), businessID, limit)
	if err != nil {
		return respondError(c, sh.logger, err)
	}

	return c.JSON(http.StatusOK, notifications)
}
