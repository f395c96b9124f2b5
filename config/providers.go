package config

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goflare.io/ember"
	emberConfig "goflare.io/ember/config"
	"goflare.io/ignite"
	"goflare.io/loyalty/driver"
	"goflare.io/loyalty/idempotency"
	"goflare.io/loyalty/notification"
)

func ProvideApplicationConfig() (*Config, error) {
	return Load(DefaultPath)
}

func ProvidePostgresConn(appConfig *Config) (driver.PostgresPool, error) {
	conn, err := driver.ConnectSQL(appConfig.Postgres.URL, appConfig.Postgres.MaxConns)
	if err != nil {
		return nil, err
	}

	return conn.Pool, nil
}

func ProvideRedis(appConfig *Config) (*redis.Client, error) {
	return driver.ConnectRedis(appConfig.Redis.Addr, appConfig.Redis.Password, appConfig.Redis.DB)
}

// EmberConfig applies the cache section to ember's defaults, whose 1 GB
// local size would make ristretto allocate gigabytes of counters up front.
func EmberConfig(appConfig *Config, logger *zap.Logger) emberConfig.Config {
	config := emberConfig.NewConfig()
	config.MaxLocalSize = appConfig.Cache.MaxLocalSize
	config.ShardCount = appConfig.Cache.Shards
	config.DefaultExpiration = appConfig.Cache.TTL
	config.CacheBehaviorConfig.AdaptiveTTLSettings.MaxTTL = appConfig.Cache.TTL
	if config.CacheBehaviorConfig.AdaptiveTTLSettings.MinTTL > appConfig.Cache.TTL {
		config.CacheBehaviorConfig.AdaptiveTTLSettings.MinTTL = appConfig.Cache.TTL
	}
	config.Logger = logger
	return config
}

func ProvideEmber(appConfig *Config, conn *redis.Client, logger *zap.Logger) (*ember.MultiCache, error) {
	config := EmberConfig(appConfig, logger)
	cache, err := ember.NewMultiCache(context.Background(), &config, conn)
	if err != nil {
		logger.Error("failed to create cache", zap.Error(err))
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return cache, nil
}

func ProvideIgnite() ignite.Manager {
	return ignite.NewManager()
}

// ProvideNATS returns nil when the server cannot be reached; events are then
// processed in-process.
func ProvideNATS(appConfig *Config, logger *zap.Logger) *nats.Conn {
	nc, err := nats.Connect(appConfig.NATS.URL,
		nats.Name("loyalty-api"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		logger.Error("error connecting to nats", zap.Error(err), zap.String("url", appConfig.NATS.URL))
		return nil
	}
	return nc
}

func ProvideSMSSender(appConfig *Config, logger *zap.Logger) (notification.Sender, error) {
	if appConfig.SMS.Provider == SMSProviderSNS {
		sender, err := notification.NewSNSSenderFromRegion(context.Background(), appConfig.SMS.Region, appConfig.SMS.SenderID)
		if err != nil {
			return nil, fmt.Errorf("failed to create sns sender: %w", err)
		}
		return sender, nil
	}
	return notification.NewStubSender(logger), nil
}

func ProvideLocation(appConfig *Config) *time.Location {
	return appConfig.Loyalty.Location()
}

func ProvideIdempotencyStore(appConfig *Config, conn *redis.Client, logger *zap.Logger) *idempotency.Store {
	return idempotency.NewStore(conn, appConfig.Loyalty.IdempotencyTTL, logger)
}

func NewLogger(appConfig *Config) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(appConfig.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level: %w", err)
	}
	config.Level = level
	return config.Build()
}
