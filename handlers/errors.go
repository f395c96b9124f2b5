package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"goflare.io/loyalty/apperr"
)

var statusByCode = map[apperr.Code]int{
	apperr.CodeNotFound:        http.StatusNotFound,
	apperr.CodeInvalidInput:    http.StatusBadRequest,
	apperr.CodeInvalidPolicy:   http.StatusUnprocessableEntity,
	apperr.CodeAlreadyRedeemed: http.StatusConflict,
}

// respondError writes err as {"error": ...} with the status of its code.
// Unexpected errors are logged and hidden from the client.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	status, ok := statusByCode[apperr.CodeOf(err)]
	if !ok {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return c.JSON(status, map[string]string{"error": message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func queryLimit(c echo.Context) (int, bool) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}
