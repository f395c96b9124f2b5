package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/accrual"
	"goflare.io/loyalty/apperr"
	"goflare.io/loyalty/handlers"
	"goflare.io/loyalty/idempotency"
	"goflare.io/loyalty/models"
)

type redeemOnce struct {
	loyalty.Loyalty
	calls int
}

func (r *redeemOnce) RedeemReward(_ context.Context, rewardID uint64) (*accrual.RedeemResult, error) {
	r.calls++
	if r.calls > 1 {
		return nil, apperr.AlreadyRedeemed(rewardID)
	}
	return &accrual.RedeemResult{
		Reward:   models.Reward{ID: rewardID, Redeemed: true},
		Customer: models.Customer{ID: 7, RewardsEarned: 1, RewardsRedeemed: 1},
	}, nil
}

func newTestServer(t *testing.T, l loyalty.Loyalty) *Server {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zap.NewNop()
	return NewServer(
		l,
		idempotency.NewStore(client, time.Hour, logger),
		handlers.NewBusinessHandler(l, logger),
		handlers.NewCustomerHandler(l, logger),
		handlers.NewVisitHandler(l, logger),
		handlers.NewRewardHandler(l, logger),
		handlers.NewAnalyticsHandler(l, logger),
		handlers.NewSMSHandler(l, logger),
		logger,
	)
}

func redeem(s *Server, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/rewards/5/redeem", nil)
	if key != "" {
		req.Header.Set(idempotency.HeaderKey, key)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRedeemRoute_IdempotentRetry(t *testing.T) {
	l := &redeemOnce{}
	s := newTestServer(t, l)

	first := redeem(s, "retry-1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get(idempotency.HeaderReplayed))

	second := redeem(s, "retry-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(idempotency.HeaderReplayed))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, l.calls)
}

func TestRedeemRoute_WithoutKey(t *testing.T) {
	l := &redeemOnce{}
	s := newTestServer(t, l)

	assert.Equal(t, http.StatusOK, redeem(s, "").Code)
	assert.Equal(t, http.StatusConflict, redeem(s, "").Code)
	assert.Equal(t, 2, l.calls)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, &redeemOnce{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &redeemOnce{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
