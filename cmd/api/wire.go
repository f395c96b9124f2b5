//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"goflare.io/loyalty"
	"goflare.io/loyalty/accrual"
	"goflare.io/loyalty/analytics"
	"goflare.io/loyalty/business"
	"goflare.io/loyalty/config"
	"goflare.io/loyalty/customer"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/event"
	"goflare.io/loyalty/handlers"
	"goflare.io/loyalty/notification"
	"goflare.io/loyalty/reward"
	"goflare.io/loyalty/server"
	"goflare.io/loyalty/visit"
)

func InitializeLoyaltyService(appConfig *config.Config) (*server.Server, error) {

	wire.Build(
		config.NewLogger,
		config.ProvidePostgresConn,
		config.ProvideRedis,
		config.ProvideEmber,
		config.ProvideIgnite,
		config.ProvideNATS,
		config.ProvideSMSSender,
		config.ProvideLocation,
		config.ProvideIdempotencyStore,
		driver.NewTransactionManager,
		wire.Bind(new(driver.Transactor), new(*driver.TransactionManager)),
		business.NewRepository,
		business.NewService,
		customer.NewRepository,
		customer.NewService,
		visit.NewRepository,
		visit.NewService,
		reward.NewRepository,
		reward.NewService,
		event.NewRepository,
		event.NewService,
		notification.NewRepository,
		notification.NewService,
		loyalty.NewEventManager,
		wire.Bind(new(event.Publisher), new(*loyalty.EventManager)),
		wire.Bind(new(accrual.BusinessReader), new(business.Repository)),
		wire.Bind(new(accrual.CustomerStore), new(customer.Repository)),
		wire.Bind(new(accrual.VisitWriter), new(visit.Repository)),
		wire.Bind(new(accrual.RewardStore), new(reward.Repository)),
		accrual.NewService,
		wire.Bind(new(analytics.BusinessReader), new(business.Repository)),
		wire.Bind(new(analytics.CustomerLister), new(customer.Repository)),
		wire.Bind(new(analytics.VisitLister), new(visit.Repository)),
		wire.Bind(new(analytics.RewardLister), new(reward.Repository)),
		analytics.NewService,
		loyalty.NewProgram,
		handlers.NewBusinessHandler,
		handlers.NewCustomerHandler,
		handlers.NewVisitHandler,
		handlers.NewRewardHandler,
		handlers.NewAnalyticsHandler,
		handlers.NewSMSHandler,
		server.NewServer,
	)

	return &server.Server{}, nil
}
