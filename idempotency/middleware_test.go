package idempotency

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/rewards/5/redeem", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(HeaderKey, key)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ReplaysCompletedRequest(t *testing.T) {
	store, _ := newTestStore(t)
	calls := 0

	e := echo.New()
	e.POST("/api/rewards/:rewardId/redeem", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]int{"calls": calls})
	}, store.Middleware())

	first := serve(e, "abc")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(HeaderReplayed))

	second := serve(e, "abc")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(HeaderReplayed))
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestMiddleware_WithoutKeyAlwaysRuns(t *testing.T) {
	store, _ := newTestStore(t)
	calls := 0

	e := echo.New()
	e.POST("/api/rewards/:rewardId/redeem", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, store.Middleware())

	serve(e, "")
	serve(e, "")
	assert.Equal(t, 2, calls)
}

func TestMiddleware_ServerErrorReleasesKey(t *testing.T) {
	store, _ := newTestStore(t)
	calls := 0

	e := echo.New()
	e.POST("/api/rewards/:rewardId/redeem", func(c echo.Context) error {
		calls++
		if calls == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "boom"})
		}
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, store.Middleware())

	assert.Equal(t, http.StatusInternalServerError, serve(e, "abc").Code)
	retry := serve(e, "abc")
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.Empty(t, retry.Header().Get(HeaderReplayed))
	assert.Equal(t, 2, calls)
}

func TestMiddleware_InFlightConflict(t *testing.T) {
	store, _ := newTestStore(t)

	e := echo.New()
	var inner *httptest.ResponseRecorder
	e.POST("/api/rewards/:rewardId/redeem", func(c echo.Context) error {
		if inner == nil {
			inner = serve(e, "abc")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}, store.Middleware())

	outer := serve(e, "abc")
	assert.Equal(t, http.StatusOK, outer.Code)
	require.NotNil(t, inner)
	assert.Equal(t, http.StatusConflict, inner.Code)
}

func TestMiddleware_FailsOpenWhenRedisIsDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()
	calls := 0

	e := echo.New()
	e.POST("/api/rewards/:rewardId/redeem", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]int{"calls": calls})
	}, store.Middleware())

	assert.Equal(t, http.StatusOK, serve(e, "abc").Code)
	assert.Equal(t, http.StatusOK, serve(e, "abc").Code)
	assert.Equal(t, 2, calls)
}
