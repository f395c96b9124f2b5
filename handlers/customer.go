package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/models"
)

type CustomerHandler interface {
	CreateCustomer(c echo.Context) error
	GetCustomer(c echo.Context) error
	GetCustomerByPhone(c echo.Context) error
	ListCustomers(c echo.Context) error
	UpdateCustomer(c echo.Context) error
}

type customerHandler struct {
	Loyalty loyalty.Loyalty
	logger  *zap.Logger
}

func NewCustomerHandler(l loyalty.Loyalty, logger *zap.Logger) CustomerHandler {
	return &customerHandler{
		Loyalty: l,
		logger:  logger,
	}
}

// CreateCustomer handles POST /api/business/:businessId/customers
func (ch *customerHandler) CreateCustomer(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	customer := models.NewCustomer()
	if err := decodeBody(c, newCustomerBody, customer, false); err != nil {
		return badRequest(c, err.Error())
	}
	customer.BusinessID = businessID

	if err := ch.Loyalty.CreateCustomer(c.Request().Context(), customer); err != nil {
		return respondError(c, ch.logger, err)
	}

	return c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /api/customers/:customerId
func (ch *customerHandler) GetCustomer(c echo.Context) error {
	id, ok := pathID(c, "customerId")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	customer, err := ch.Loyalty.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return respondError(c, ch.logger, err)
	}

	return c.JSON(http.StatusOK, customer)
}

// GetCustomerByPhone handles GET /api/business/:businessId/customer/phone/:phone
func (ch *customerHandler) GetCustomerByPhone(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	customer, err := ch.Loyalty.GetCustomerByPhone(c.Request().Context(), businessID, c.Param("phone"))
	if err != nil {
		return respondError(c, ch.logger, err)
	}

	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /api/business/:businessId/customers
func (ch *customerHandler) ListCustomers(c echo.Context) error {
	businessID, ok := pathID(c, "businessId")
	if !ok {
		return badRequest(c, "Invalid business id")
	}

	customers, err := ch.Loyalty.ListCustomers(c.Request().Context(), businessID)
	if err != nil {
		return respondError(c, ch.logger, err)
	}

	return c.JSON(http.StatusOK, customers)
}

// UpdateCustomer handles PUT /api/customers/:customerId
func (ch *customerHandler) UpdateCustomer(c echo.Context) error {
	id, ok := pathID(c, "customerId")
	if !ok {
		return badRequest(c, "Invalid customer id")
	}

	var changes models.PartialCustomer
	if err := decodeBody(c, updateCustomerBody, &changes, false); err != nil {
		return badRequest(c, err.Error())
	}

	customer, err := ch.Loyalty.UpdateCustomer(c.Request().Context(), id, &changes)
	if err != nil {
		return respondError(c, ch.logger, err)
	}

	return c.JSON(http.StatusOK, customer)
}
