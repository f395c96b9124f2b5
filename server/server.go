package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"goflare.io/loyalty"
	"goflare.io/loyalty/handlers"
	"goflare.io/loyalty/idempotency"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	echo        *echo.Echo
	logger      *zap.Logger
	loyalty     loyalty.Loyalty
	idempotency *idempotency.Store

	Business  handlers.BusinessHandler
	Customer  handlers.CustomerHandler
	Visit     handlers.VisitHandler
	Reward    handlers.RewardHandler
	Analytics handlers.AnalyticsHandler
	SMS       handlers.SMSHandler
}

func NewServer(
	l loyalty.Loyalty,
	store *idempotency.Store,
	Business handlers.BusinessHandler,
	Customer handlers.CustomerHandler,
	Visit handlers.VisitHandler,
	Reward handlers.RewardHandler,
	Analytics handlers.AnalyticsHandler,
	SMS handlers.SMSHandler,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	s := &Server{
		echo:        e,
		logger:      logger,
		loyalty:     l,
		idempotency: store,
		Business:    Business,
		Customer:    Customer,
		Visit:       Visit,
		Reward:      Reward,
		Analytics:   Analytics,
		SMS:         SMS,
	}
	s.registerMiddlewares()
	s.registerRoutes()
	return s
}

// Start listens on address until the server is shut down.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Run starts the server in the background and blocks until SIGINT or
// SIGTERM, then drains in-flight requests and stops the loyalty program.
func (s *Server) Run(address string) error {
	go func() {
		if err := s.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.echo.Shutdown(ctx)
	s.loyalty.Close()
	return err
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerMiddlewares() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
}

func (s *Server) registerRoutes() {
	idempotent := s.idempotency.Middleware()

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.POST("/business", s.Business.CreateBusiness)
	api.GET("/business/:id", s.Business.GetBusiness)
	api.PUT("/business/:id", s.Business.UpdateBusiness)
	api.GET("/business/:businessId/qr", s.Business.CheckInQR)

	api.GET("/business/:businessId/customers", s.Customer.ListCustomers)
	api.POST("/business/:businessId/customers", s.Customer.CreateCustomer)
	api.GET("/business/:businessId/customer/phone/:phone", s.Customer.GetCustomerByPhone)
	api.GET("/customers/:customerId", s.Customer.GetCustomer)
	api.PUT("/customers/:customerId", s.Customer.UpdateCustomer)

	api.POST("/business/:businessId/customers/:customerId/checkin", s.Visit.CheckIn, idempotent)
	api.GET("/business/:businessId/visits/recent", s.Visit.RecentVisits)
	api.GET("/customers/:customerId/visits", s.Visit.CustomerVisits)

	api.GET("/customers/:customerId/rewards", s.Reward.AvailableRewards)
	api.POST("/rewards/:rewardId/redeem", s.Reward.RedeemReward, idempotent)

	api.GET("/business/:businessId/stats", s.Analytics.DashboardStats)
	api.GET("/business/:businessId/analytics", s.Analytics.Analytics)

	api.POST("/business/:businessId/sms", s.SMS.SendSMS)
	api.GET("/business/:businessId/sms", s.SMS.ListSMS)
}
