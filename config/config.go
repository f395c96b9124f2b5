package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ServerStartPort = ":8080"
	DefaultPath     = "./config.yaml"

	SMSProviderStub = "stub"
	SMSProviderSNS  = "sns"

	MaxCacheEntries = 1_000_000
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	NATS     NATSConfig     `mapstructure:"nats"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig sizes the ember cache. MaxLocalSize counts entries per local
// shard, not bytes.
type CacheConfig struct {
	MaxLocalSize uint64        `mapstructure:"max_local_size"`
	Shards       uint64        `mapstructure:"shards"`
	TTL          time.Duration `mapstructure:"ttl"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type SMSConfig struct {
	Provider string `mapstructure:"provider"`
	Region   string `mapstructure:"region"`
	SenderID string `mapstructure:"sender_id"`
}

type WorkerConfig struct {
	MinWorkers int `mapstructure:"min_workers"`
	MaxWorkers int `mapstructure:"max_workers"`
	QueueSize  int `mapstructure:"queue_size"`
}

type LoyaltyConfig struct {
	Timezone       string        `mapstructure:"timezone"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`

	location *time.Location
}

// Location is the business timezone used for calendar-day analytics.
func (l LoyaltyConfig) Location() *time.Location {
	if l.location == nil {
		return time.UTC
	}
	return l.location
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads path (if present), overlays a .env file and environment
// variables such as POSTGRES_URL or REDIS_ADDR, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ServerStartPort)
	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.max_local_size", 10000)
	v.SetDefault("cache.shards", 4)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("sms.provider", SMSProviderStub)
	v.SetDefault("sms.region", "eu-west-1")
	v.SetDefault("sms.sender_id", "")
	v.SetDefault("worker.min_workers", 2)
	v.SetDefault("worker.max_workers", 10)
	v.SetDefault("worker.queue_size", 1000)
	v.SetDefault("loyalty.timezone", "Africa/Nairobi")
	v.SetDefault("loyalty.idempotency_ttl", 24*time.Hour)
	v.SetDefault("logging.level", "info")
}

func validateConfig(cfg *Config) error {
	if cfg.Postgres.URL == "" {
		return errors.New("postgres.url is required")
	}
	if cfg.Postgres.MaxConns <= 0 {
		return errors.New("postgres.max_conns must be positive")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}

	if cfg.Cache.MaxLocalSize == 0 || cfg.Cache.MaxLocalSize > MaxCacheEntries {
		return fmt.Errorf("cache.max_local_size must be between 1 and %d", MaxCacheEntries)
	}
	if cfg.Cache.Shards == 0 || cfg.Cache.TTL <= 0 {
		return errors.New("cache.shards and cache.ttl must be positive")
	}

	switch cfg.SMS.Provider {
	case SMSProviderStub:
	case SMSProviderSNS:
		if cfg.SMS.Region == "" {
			return errors.New("sms.region is required for the sns provider")
		}
	default:
		return fmt.Errorf("unknown sms.provider %q", cfg.SMS.Provider)
	}

	if cfg.Worker.MaxWorkers <= 0 || cfg.Worker.QueueSize <= 0 {
		return errors.New("worker.max_workers and worker.queue_size must be positive")
	}
	if cfg.Worker.MinWorkers <= 0 || cfg.Worker.MinWorkers > cfg.Worker.MaxWorkers {
		return errors.New("worker.min_workers must be between 1 and worker.max_workers")
	}

	if cfg.Loyalty.IdempotencyTTL <= 0 {
		return errors.New("loyalty.idempotency_ttl must be positive")
	}
	location, err := time.LoadLocation(cfg.Loyalty.Timezone)
	if err != nil {
		return fmt.Errorf("invalid loyalty.timezone: %w", err)
	}
	cfg.Loyalty.location = location

	return nil
}
